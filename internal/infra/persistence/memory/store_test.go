package memory

import (
	"context"
	"errors"
	"testing"

	"neurocore/pkg/domain"
)

func TestAppendMutatesLiveContainer(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Append(ctx, func(c *domain.Container) (domain.Result, error) {
		c.PutDevice(domain.Device{Name: "amp"})
		return domain.Result{}, nil
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	var count int
	if err := s.View(ctx, func(c *domain.Container) error {
		count = c.DeviceCount()
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if count != 1 {
		t.Fatalf("device count %d", count)
	}
}

func TestViewReceivesIsolatedCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _ = s.Append(ctx, func(c *domain.Container) (domain.Result, error) {
		c.PutDevice(domain.Device{Name: "amp", Description: "original"})
		return domain.Result{}, nil
	})

	_ = s.View(ctx, func(c *domain.Container) error {
		c.Devices[0].Description = "mutated"
		return nil
	})

	_ = s.View(ctx, func(c *domain.Container) error {
		if c.Devices[0].Description != "original" {
			t.Fatalf("view mutation leaked: %q", c.Devices[0].Description)
		}
		return nil
	})
}

func TestAppendErrorPropagates(t *testing.T) {
	s := NewStore()
	boom := errors.New("boom")
	_, err := s.Append(context.Background(), func(c *domain.Container) (domain.Result, error) {
		return domain.Result{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error not propagated: %v", err)
	}
}

func TestImportStateNormalizes(t *testing.T) {
	s := NewStore()
	c := domain.NewContainer()
	c.Columns = []domain.ColumnSpec{{Name: "impedance", Type: domain.ColumnFloat}}
	c.Electrodes = []domain.ElectrodeRow{
		{ID: 0, Columns: map[string]any{"impedance": nil}},
	}
	s.ImportState(c)

	exported := s.ExportState()
	if !exported.CheckColumnHomogeneity() {
		t.Fatal("imported state not normalized")
	}
}
