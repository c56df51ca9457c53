package core

import (
	"errors"
	"testing"

	"neurocore/pkg/domain"
)

func TestParseMetadataDecodesAllSections(t *testing.T) {
	raw := map[string]any{
		"Device": []any{
			map[string]any{"name": "amp", "description": "patch amplifier", "manufacturer": "Axon"},
		},
		"ElectrodeGroup": []any{
			map[string]any{"name": "shank0", "location": "CA1", "device": "amp"},
		},
		"Electrodes": []any{
			map[string]any{"name": "ch0", "impedance": 1.2, "custom_label": "tip"},
		},
		"Recordings": []any{
			map[string]any{"file_name": "a.abf", "stimulus_type": "ramp", "icephys_experiment_type": "voltage_clamp"},
		},
		"UnknownSection": "ignored",
	}
	meta, err := ParseMetadata(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(meta.Devices) != 1 || meta.Devices[0].Manufacturer != "Axon" {
		t.Fatalf("devices: %+v", meta.Devices)
	}
	if len(meta.Groups) != 1 || meta.Groups[0].DeviceName != "amp" {
		t.Fatalf("groups: %+v", meta.Groups)
	}
	override, ok := meta.ElectrodeFor("ch0")
	if !ok {
		t.Fatal("electrode override missing")
	}
	if override.Extra["impedance"] != 1.2 || override.Extra["custom_label"] != "tip" {
		t.Fatalf("extras not passed through: %+v", override.Extra)
	}
	session := meta.SessionFor("a.abf")
	if session.StimulusType != "ramp" || session.ExperimentType != domain.ExperimentVoltageClamp {
		t.Fatalf("session: %+v", session)
	}
	if got := meta.SessionFor("missing.abf"); got != (domain.SessionInfo{}) {
		t.Fatalf("undescribed file returned %+v", got)
	}
}

func TestParseMetadataAcceptsYAMLStyleMaps(t *testing.T) {
	raw := map[string]any{
		"Device": []any{
			map[any]any{"name": "amp"},
		},
	}
	meta, err := ParseMetadata(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(meta.Devices) != 1 || meta.Devices[0].Name != "amp" {
		t.Fatalf("devices: %+v", meta.Devices)
	}
}

func TestParseMetadataLegacyFileNameKey(t *testing.T) {
	raw := map[string]any{
		"Recordings": []any{
			map[string]any{"abf_file_name": "old.abf", "stimulus_type": "chirp"},
		},
	}
	meta, err := ParseMetadata(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.SessionFor("old.abf").StimulusType != "chirp" {
		t.Fatalf("legacy key not honoured: %+v", meta.Sessions)
	}
}

func TestParseMetadataMalformedShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
	}{
		{"section not a sequence", map[string]any{"Device": map[string]any{"name": "amp"}}},
		{"entry not a mapping", map[string]any{"Device": []any{"amp"}}},
		{"entry with non-string keys", map[string]any{"Device": []any{map[any]any{1: "amp"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMetadata(tc.raw)
			var malformed domain.MalformedMetadataError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedMetadataError, got %v", err)
			}
		})
	}
}

func TestParseMetadataNilAndEmpty(t *testing.T) {
	meta, err := ParseMetadata(nil)
	if err != nil || meta == nil {
		t.Fatalf("nil overrides: %v %v", meta, err)
	}
	meta, err = ParseMetadata(map[string]any{})
	if err != nil || len(meta.Devices) != 0 {
		t.Fatalf("empty overrides: %+v %v", meta, err)
	}
}
