package core

import (
	"context"
	"math"
	"testing"

	"neurocore/internal/blob"
	"neurocore/pkg/domain"
)

func newMemoryBlobStore(t *testing.T) blob.Store {
	t.Helper()
	t.Setenv("NEUROCORE_BLOB_DRIVER", string(blob.DriverMemory))
	bs, err := blob.Open(context.Background())
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}
	return bs
}

func TestExportSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	bs := newMemoryBlobStore(t)

	c := domain.NewContainer()
	c.PutDevice(domain.Device{Name: "probe", Description: "silicon probe"})
	c.Columns = []domain.ColumnSpec{{Name: "impedance", Type: domain.ColumnFloat}}
	c.Electrodes = []domain.ElectrodeRow{
		{ID: 0, GroupName: "g0", Columns: map[string]any{"impedance": math.NaN()}},
	}
	c.NextSequentialID = 3

	info, err := ExportSnapshot(ctx, bs, c, "run-1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.Key != "exports/run-1.json" {
		t.Fatalf("key %q", info.Key)
	}
	if info.Metadata["devices"] != "1" || info.Metadata["electrode_rows"] != "1" {
		t.Fatalf("metadata %+v", info.Metadata)
	}

	restored, err := LoadSnapshot(ctx, bs, "run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.NextSequentialID != 3 {
		t.Fatalf("counter lost: %d", restored.NextSequentialID)
	}
	f, ok := restored.Electrodes[0].Columns["impedance"].(float64)
	if !ok || !math.IsNaN(f) {
		t.Fatalf("NaN sentinel not rehydrated: %v", restored.Electrodes[0].Columns["impedance"])
	}
}

func TestExportSnapshotRequiresName(t *testing.T) {
	if _, err := ExportSnapshot(context.Background(), newMemoryBlobStore(t), domain.NewContainer(), ""); err == nil {
		t.Fatal("empty export name accepted")
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(context.Background(), newMemoryBlobStore(t), "absent"); err == nil {
		t.Fatal("missing snapshot did not error")
	}
}
