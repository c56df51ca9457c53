package core

import (
	"fmt"

	"neurocore/pkg/domain"
)

// Recognized top-level override keys.
const (
	metaKeyDevice     = "Device"
	metaKeyGroup      = "ElectrodeGroup"
	metaKeyElectrodes = "Electrodes"
	metaKeyRecordings = "Recordings"
)

// DeviceOverride is a caller-supplied device descriptor.
type DeviceOverride struct {
	Name         string
	Description  string
	Manufacturer string
}

// GroupOverride is a caller-supplied electrode group descriptor.
type GroupOverride struct {
	Name        string
	Description string
	Location    string
	DeviceName  string
}

// ElectrodeOverride is a caller-supplied electrode descriptor. For the
// intracellular path it describes an icephys electrode; for the
// extracellular path its Extra fields flow into the table columns of the
// channel with the matching name.
type ElectrodeOverride struct {
	Name        string
	Description string
	DeviceName  string
	// Extra holds unrecognized fields, passed through opaquely as column
	// values.
	Extra map[string]any
}

// Metadata is the validated form of the caller-supplied override mapping.
type Metadata struct {
	Devices    []DeviceOverride
	Groups     []GroupOverride
	Electrodes []ElectrodeOverride
	Sessions   []domain.SessionInfo
}

// SessionFor returns the side-table entry for a file name, if described.
func (m *Metadata) SessionFor(fileName string) domain.SessionInfo {
	if m == nil {
		return domain.SessionInfo{}
	}
	for _, s := range m.Sessions {
		if s.FileName == fileName {
			return s
		}
	}
	return domain.SessionInfo{}
}

// ElectrodeFor returns the electrode override matching name, if any.
func (m *Metadata) ElectrodeFor(name string) (ElectrodeOverride, bool) {
	if m == nil {
		return ElectrodeOverride{}, false
	}
	for _, e := range m.Electrodes {
		if e.Name == name {
			return e, true
		}
	}
	return ElectrodeOverride{}, false
}

// ParseMetadata validates and decodes a raw override mapping. Each
// recognized top-level key must hold a sequence of per-entity mappings;
// anything else is fatal before any resolution begins. Unrecognized
// top-level keys and unrecognized per-entity fields pass through opaquely.
func ParseMetadata(raw map[string]any) (*Metadata, error) {
	meta := &Metadata{}
	if raw == nil {
		return meta, nil
	}

	entries, err := entryList(raw, metaKeyDevice)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		meta.Devices = append(meta.Devices, DeviceOverride{
			Name:         stringField(entry, "name"),
			Description:  stringField(entry, "description"),
			Manufacturer: stringField(entry, "manufacturer"),
		})
	}

	entries, err = entryList(raw, metaKeyGroup)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		meta.Groups = append(meta.Groups, GroupOverride{
			Name:        stringField(entry, "name"),
			Description: stringField(entry, "description"),
			Location:    stringField(entry, "location"),
			DeviceName:  deviceField(entry),
		})
	}

	entries, err = entryList(raw, metaKeyElectrodes)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		override := ElectrodeOverride{
			Name:        stringField(entry, "name"),
			Description: stringField(entry, "description"),
			DeviceName:  deviceField(entry),
		}
		for key, value := range entry {
			switch key {
			case "name", "description", "device_name", "device":
				continue
			}
			if override.Extra == nil {
				override.Extra = make(map[string]any)
			}
			override.Extra[key] = value
		}
		meta.Electrodes = append(meta.Electrodes, override)
	}

	entries, err = entryList(raw, metaKeyRecordings)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := stringField(entry, "file_name")
		if name == "" {
			name = stringField(entry, "abf_file_name")
		}
		meta.Sessions = append(meta.Sessions, domain.SessionInfo{
			FileName:       name,
			StimulusType:   stringField(entry, "stimulus_type"),
			ExperimentType: domain.ExperimentType(stringField(entry, "icephys_experiment_type")),
		})
	}
	return meta, nil
}

func entryList(raw map[string]any, key string) ([]map[string]any, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil, nil
	}
	seq, ok := value.([]any)
	if !ok {
		// A pre-shaped slice of maps is also accepted.
		if shaped, isShaped := value.([]map[string]any); isShaped {
			return shaped, nil
		}
		return nil, domain.MalformedMetadataError{Key: key, Detail: fmt.Sprintf("expected a sequence of mappings, got %T", value)}
	}
	out := make([]map[string]any, 0, len(seq))
	for i, item := range seq {
		entry, ok := normalizeEntry(item)
		if !ok {
			return nil, domain.MalformedMetadataError{Key: key, Detail: fmt.Sprintf("entry %d: expected a mapping, got %T", i, item)}
		}
		out = append(out, entry)
	}
	return out, nil
}

// normalizeEntry accepts both string-keyed maps and the any-keyed maps some
// YAML decoders produce.
func normalizeEntry(item any) (map[string]any, bool) {
	switch m := item.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = v
		}
		return out, true
	}
	return nil, false
}

func stringField(entry map[string]any, key string) string {
	if v, ok := entry[key].(string); ok {
		return v
	}
	return ""
}

func deviceField(entry map[string]any) string {
	if v := stringField(entry, "device_name"); v != "" {
		return v
	}
	return stringField(entry, "device")
}
