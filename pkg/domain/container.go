package domain

import "math"

// Container is the cumulative structured store that entities and tables are
// written into across any number of append calls. Entities are created
// lazily on first append and never destroyed. The container itself performs
// no reconciliation; the engine mutates it through the registry methods
// below and is expected to hold whatever lock guards the enclosing store.
type Container struct {
	Devices           []Device                 `json:"devices"`
	Groups            []ElectrodeGroup         `json:"electrode_groups"`
	IcephysElectrodes []IcephysElectrode       `json:"icephys_electrodes"`
	Columns           []ColumnSpec             `json:"electrode_columns"`
	Electrodes        []ElectrodeRow           `json:"electrodes"`
	Recordings        []IntracellularRecording `json:"recordings"`

	// Counter state carried across append calls so identifiers stay
	// globally consistent however many times the container is written to.
	NextSimultaneousID int64      `json:"next_simultaneous_id"`
	NextSequentialID   int64      `json:"next_sequential_id"`
	First              FirstStart `json:"first_session_start"`
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{}
}

// Device returns the device with the given name.
func (c *Container) Device(name string) (Device, bool) {
	for _, d := range c.Devices {
		if d.Name == name {
			return d, true
		}
	}
	return Device{}, false
}

// PutDevice registers a new device. The caller must have checked for an
// existing device of the same name; duplicates are never overwritten.
func (c *Container) PutDevice(d Device) {
	c.Devices = append(c.Devices, d)
}

// DeviceCount returns the number of registered devices.
func (c *Container) DeviceCount() int {
	return len(c.Devices)
}

// FirstDevice returns the earliest registered device. Callers must check
// DeviceCount first.
func (c *Container) FirstDevice() Device {
	return c.Devices[0]
}

// Group returns the electrode group with the given name.
func (c *Container) Group(name string) (ElectrodeGroup, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return ElectrodeGroup{}, false
}

// PutGroup registers a new electrode group.
func (c *Container) PutGroup(g ElectrodeGroup) {
	c.Groups = append(c.Groups, g)
}

// IcephysElectrode returns the intracellular electrode with the given name.
func (c *Container) IcephysElectrode(name string) (IcephysElectrode, bool) {
	for _, e := range c.IcephysElectrodes {
		if e.Name == name {
			return e, true
		}
	}
	return IcephysElectrode{}, false
}

// PutIcephysElectrode registers a new intracellular electrode.
func (c *Container) PutIcephysElectrode(e IcephysElectrode) {
	c.IcephysElectrodes = append(c.IcephysElectrodes, e)
}

// Column returns the declared column spec for name.
func (c *Container) Column(name string) (ColumnSpec, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnSpec{}, false
}

// RowCount returns the number of electrode rows written so far. The next
// appended row receives this value as its ID.
func (c *Container) RowCount() int64 {
	return int64(len(c.Electrodes))
}

// NextIntracellularID returns the identifier the next recording entry
// receives. Derived from the entry count: intracellular IDs are dense.
func (c *Container) NextIntracellularID() int64 {
	return int64(len(c.Recordings))
}

// Clone returns a deep copy of the container.
func (c *Container) Clone() *Container {
	cp := &Container{
		Devices:            append([]Device(nil), c.Devices...),
		Groups:             append([]ElectrodeGroup(nil), c.Groups...),
		IcephysElectrodes:  append([]IcephysElectrode(nil), c.IcephysElectrodes...),
		Columns:            append([]ColumnSpec(nil), c.Columns...),
		Recordings:         append([]IntracellularRecording(nil), c.Recordings...),
		NextSimultaneousID: c.NextSimultaneousID,
		NextSequentialID:   c.NextSequentialID,
		First:              c.First,
	}
	if c.Electrodes != nil {
		cp.Electrodes = make([]ElectrodeRow, len(c.Electrodes))
		for i, row := range c.Electrodes {
			cp.Electrodes[i] = cloneRow(row)
		}
	}
	return cp
}

func cloneRow(row ElectrodeRow) ElectrodeRow {
	cp := row
	if row.Columns != nil {
		cp.Columns = make(map[string]any, len(row.Columns))
		for k, v := range row.Columns {
			cp.Columns[k] = v
		}
	}
	return cp
}

// Normalize restores in-memory invariants after a JSON snapshot import:
// NaN float sentinels are encoded as nulls on disk and are rehydrated here
// from the declared column schema.
func (c *Container) Normalize() {
	for i := range c.Electrodes {
		row := &c.Electrodes[i]
		if row.Columns == nil {
			row.Columns = make(map[string]any, len(c.Columns))
		}
		for _, col := range c.Columns {
			value, ok := row.Columns[col.Name]
			if !ok || value == nil {
				row.Columns[col.Name] = col.Type.Sentinel()
				continue
			}
			if col.Type == ColumnFloat {
				if f, isFloat := value.(float64); isFloat {
					row.Columns[col.Name] = f
				}
			}
		}
	}
}

// CheckColumnHomogeneity verifies that every declared column has a value for
// every row and that no row carries an undeclared column. It exists for
// tests and post-import validation; the engine maintains the invariant.
func (c *Container) CheckColumnHomogeneity() bool {
	declared := make(map[string]ColumnType, len(c.Columns))
	for _, col := range c.Columns {
		declared[col.Name] = col.Type
	}
	for _, row := range c.Electrodes {
		if len(row.Columns) != len(declared) {
			return false
		}
		for name, value := range row.Columns {
			t, ok := declared[name]
			if !ok {
				return false
			}
			if t == ColumnFloat {
				if _, isFloat := value.(float64); !isFloat {
					return false
				}
			}
		}
	}
	return true
}

// FloatValue extracts a float column cell, reporting whether it is present
// and non-sentinel.
func FloatValue(row ElectrodeRow, column string) (float64, bool) {
	v, ok := row.Columns[column]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
