// Package domain defines the persistent entities and value types of the
// neurocore container: devices, electrode groups, the cumulative electrode
// table, and the intracellular recording index.
package domain

import (
	"encoding/json"
	"math"
	"time"
)

// EntityKind identifies the type of record stored in the container.
type EntityKind string

// Supported entity kind identifiers used in warnings and persistence buckets.
const (
	// KindDevice identifies a recording device record.
	KindDevice EntityKind = "device"
	// KindElectrodeGroup identifies an electrode group record.
	KindElectrodeGroup EntityKind = "electrode_group"
	// KindElectrode identifies a row of the cumulative electrode table.
	KindElectrode EntityKind = "electrode"
	// KindIcephysElectrode identifies an intracellular electrode record.
	KindIcephysElectrode EntityKind = "icephys_electrode"
	// KindRecording identifies an intracellular recording entry.
	KindRecording EntityKind = "recording"
)

// Device represents a recording device. Devices are immutable once created
// and are referenced by electrode groups and intracellular electrodes.
type Device struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// DefaultDeviceName is the name of the device synthesized when a dependent
// entity requires a device and the container has none.
const DefaultDeviceName = "Device"

// DefaultDescription is the placeholder description applied to entities
// created without one.
const DefaultDescription = "no description"

// DefaultDevice returns the device synthesized when none was described.
func DefaultDevice() Device {
	return Device{Name: DefaultDeviceName, Description: DefaultDescription}
}

// ElectrodeGroup represents a named group of extracellular electrodes.
// A group belongs to exactly one device; many electrode rows reference one
// group.
type ElectrodeGroup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	DeviceName  string `json:"device_name"`
}

// IcephysElectrode represents an intracellular electrode linked to a device.
type IcephysElectrode struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DeviceName  string `json:"device_name"`
}

// ColumnType declares the value type of an electrode table column. The type
// fixes the sentinel used to fill rows that predate or postdate the column's
// introduction.
type ColumnType string

// Electrode table column types.
const (
	// ColumnFloat holds floating point values; sentinel is NaN.
	ColumnFloat ColumnType = "float"
	// ColumnText holds free-form text; sentinel is the empty string.
	ColumnText ColumnType = "text"
	// ColumnReference holds a name reference to another entity; sentinel is
	// an absent (nil) reference.
	ColumnReference ColumnType = "reference"
)

// Sentinel returns the fill value for rows lacking a column of this type.
func (t ColumnType) Sentinel() any {
	switch t {
	case ColumnFloat:
		return math.NaN()
	case ColumnText:
		return ""
	default:
		return nil
	}
}

// IsSentinel reports whether value is the sentinel for this column type.
func (t ColumnType) IsSentinel(value any) bool {
	switch t {
	case ColumnFloat:
		f, ok := value.(float64)
		return ok && math.IsNaN(f)
	case ColumnText:
		return value == ""
	default:
		return value == nil
	}
}

// ColumnOf infers the column type for a caller-supplied value.
func ColumnOf(value any) (ColumnType, bool) {
	switch value.(type) {
	case float64, float32, int, int32, int64:
		return ColumnFloat, true
	case string:
		return ColumnText, true
	case Reference:
		return ColumnReference, true
	}
	return "", false
}

// NormalizeValue coerces caller-supplied numeric values to float64 so column
// cells compare and serialise uniformly.
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return value
}

// Reference is a name-keyed link to another container entity, used as the
// value of reference-typed columns.
type Reference struct {
	Kind EntityKind `json:"kind"`
	Name string     `json:"name"`
}

// ColumnSpec describes one column of the cumulative electrode table.
type ColumnSpec struct {
	Name        string     `json:"name"`
	Type        ColumnType `json:"type"`
	Description string     `json:"description,omitempty"`
}

// Reserved column names populated from identity resolution rather than from
// caller-supplied per-row values.
const (
	ColumnGroup     = "group"
	ColumnGroupName = "group_name"
)

// ReservedColumn reports whether name is derived from the resolved electrode
// group and therefore excluded from explicit schema merging.
func ReservedColumn(name string) bool {
	return name == ColumnGroup || name == ColumnGroupName
}

// ElectrodeRow is one row of the cumulative electrode table: one physical
// channel appended during one session. Rows are append-only; the ID is
// assigned by the container and never reused.
type ElectrodeRow struct {
	ID        int64          `json:"id"`
	GroupName string         `json:"group_name"`
	Columns   map[string]any `json:"columns"`
}

type electrodeRowAlias ElectrodeRow

// MarshalJSON encodes NaN column sentinels as nulls so the row survives a
// JSON snapshot round trip.
func (r ElectrodeRow) MarshalJSON() ([]byte, error) {
	cp := r
	if r.Columns != nil {
		cp.Columns = make(map[string]any, len(r.Columns))
		for name, value := range r.Columns {
			if f, ok := value.(float64); ok && math.IsNaN(f) {
				cp.Columns[name] = nil
				continue
			}
			cp.Columns[name] = value
		}
	}
	return json.Marshal(electrodeRowAlias(cp))
}

// ExperimentType enumerates intracellular experiment modes.
type ExperimentType string

// Intracellular experiment types recognised by the recording index.
const (
	ExperimentVoltageClamp ExperimentType = "voltage_clamp"
	ExperimentCurrentClamp ExperimentType = "current_clamp"
	// ExperimentIZero marks recordings captured with all current and
	// amplifier settings turned off; assigned when a file carries no
	// command traces.
	ExperimentIZero ExperimentType = "i_zero"
)

// StimulusNotDescribed is the stimulus type recorded when the session
// side-table carries no entry for a file.
const StimulusNotDescribed = "not described"

// IntracellularRecording is one entry of the dataset-level recording index:
// one stimulus/response pair captured from one electrode during one segment
// of one file. The three table IDs encode how recordings nest.
type IntracellularRecording struct {
	// IntracellularID is strictly increasing and unique across the dataset.
	IntracellularID int64 `json:"intracellular_recordings_table_id"`
	// SimultaneousID is shared by all electrodes recorded during one
	// segment and increases once per segment.
	SimultaneousID int64 `json:"simultaneous_recordings_table_id"`
	// SequentialID is shared by all segments of one file and increases
	// once per file.
	SequentialID int64 `json:"sequential_recordings_table_id"`
	// RelativeStartSeconds is the whole-second offset of the file's
	// recording start from the first file in the dataset.
	RelativeStartSeconds int64          `json:"relative_session_start_time"`
	StimulusType         string         `json:"stimulus_type"`
	ExperimentType       ExperimentType `json:"icephys_experiment_type,omitempty"`
	ElectrodeName        string         `json:"electrode_name"`
	FileName             string         `json:"file_name"`
}

// SessionInfo is the optional per-file side-table entry supplying stimulus
// and experiment descriptions keyed by file name.
type SessionInfo struct {
	FileName       string         `json:"file_name"`
	StimulusType   string         `json:"stimulus_type,omitempty"`
	ExperimentType ExperimentType `json:"icephys_experiment_type,omitempty"`
}

// WarningCode classifies soft conditions surfaced during an append.
type WarningCode string

// Soft condition codes. All are locally repaired; none aborts the append.
const (
	// WarnDefaultDevice reports that a default device was synthesized
	// because a dependent entity required one and none existed.
	WarnDefaultDevice WarningCode = "default_device"
	// WarnAutoLinkedDevice reports that a referenced device was absent and
	// auto-created with only its name populated.
	WarnAutoLinkedDevice WarningCode = "auto_linked_device"
	// WarnIdentityConflict reports a name collision with differing
	// attributes, resolved by reusing the existing entity.
	WarnIdentityConflict WarningCode = "identity_conflict"
)

// Warning reports a soft condition repaired during an append operation.
type Warning struct {
	Code    WarningCode `json:"code"`
	Entity  EntityKind  `json:"entity"`
	Name    string      `json:"name"`
	Message string      `json:"message"`
}

// Result aggregates warnings raised while appending to the container.
type Result struct {
	Warnings []Warning
}

// Merge appends warnings from another result.
func (r *Result) Merge(other Result) {
	if len(other.Warnings) == 0 {
		return
	}
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Warn records a single warning.
func (r *Result) Warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// FirstStart records the wall-clock start of the first file ever appended to
// the container; all relative session start times are computed against it.
type FirstStart struct {
	Set  bool      `json:"set"`
	Time time.Time `json:"time"`
}
