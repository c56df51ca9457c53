package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testManifest = `mode: recording
sessions:
  - file_name: rec0.dat
    start_time: 2022-05-01T09:00:00Z
    channels:
      - name: ch0
        group_name: shank0
        sampling_rate_hz: 30000
        properties:
          impedance: 1.1
      - name: ch1
        group_name: shank0
        sampling_rate_hz: 30000
        properties:
          impedance: 1.3
`

const testMetadata = `Device:
  - name: probe
    description: silicon probe
ElectrodeGroup:
  - name: shank0
    location: CA1
    device: probe
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCLIMergesManifest(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEUROCORE_STORAGE_DRIVER", "memory")
	t.Setenv("NEUROCORE_BLOB_DRIVER", "memory")

	manifest := writeFile(t, dir, "manifest.yaml", testManifest)
	metadata := writeFile(t, dir, "metadata.yaml", testMetadata)

	var stdout, stderr bytes.Buffer
	code := cli([]string{"-manifest", manifest, "-metadata", metadata, "-export", "run-1"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "merged rec0.dat") {
		t.Fatalf("stdout: %s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "exported exports/run-1.json") {
		t.Fatalf("export line missing: %s", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("unexpected warnings: %s", stderr.String())
	}
}

func TestCLIWarnsOnDefaultDevice(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEUROCORE_STORAGE_DRIVER", "memory")

	manifest := writeFile(t, dir, "manifest.yaml", testManifest)

	var stdout, stderr bytes.Buffer
	code := cli([]string{"-manifest", manifest}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "default_device") {
		t.Fatalf("default device warning not surfaced: %s", stderr.String())
	}
}

func TestCLIIcephysMode(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEUROCORE_STORAGE_DRIVER", "memory")

	manifest := writeFile(t, dir, "manifest.yaml", `mode: icephys
sessions:
  - file_name: f1.abf
    start_time: 2022-05-01T09:00:00Z
    segments: 2
    command_traces: 2
    channels:
      - name: ch0
        sampling_rate_hz: 10000
`)
	var stdout, stderr bytes.Buffer
	code := cli([]string{"-manifest", manifest}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "merged f1.abf") {
		t.Fatalf("stdout: %s", stdout.String())
	}
}

func TestCLIRequiresManifest(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code %d", code)
	}
}

func TestCLIRejectsUnknownMode(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEUROCORE_STORAGE_DRIVER", "memory")
	manifest := writeFile(t, dir, "manifest.yaml", `mode: bogus
sessions:
  - file_name: x.dat
    start_time: 2022-05-01T09:00:00Z
`)
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-manifest", manifest}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
}

func TestCLIRejectsEmptyManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := writeFile(t, dir, "manifest.yaml", "mode: recording\nsessions: []\n")
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-manifest", manifest}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code %d", code)
	}
}
