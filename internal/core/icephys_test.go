package core

import (
	"errors"
	"testing"
	"time"

	"neurocore/pkg/domain"
)

func TestIndexerNestedIdentifiers(t *testing.T) {
	ix := NewIndexer(0, 0, 0, domain.FirstStart{})
	start := time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)

	cur, err := ix.BeginFile(FileSpan{
		FileName:   "a.abf",
		Start:      start,
		Segments:   2,
		Electrodes: []string{"el0", "el1"},
		Commands:   2,
	})
	if err != nil {
		t.Fatalf("begin a.abf: %v", err)
	}
	first := cur.Drain()

	cur, err = ix.BeginFile(FileSpan{
		FileName:   "b.abf",
		Start:      start.Add(90 * time.Second),
		Segments:   1,
		Electrodes: []string{"el0", "el1"},
		Commands:   1,
	})
	if err != nil {
		t.Fatalf("begin b.abf: %v", err)
	}
	second := cur.Drain()

	entries := append(first, second...)
	if len(entries) != 6 {
		t.Fatalf("entry count %d, want 6", len(entries))
	}
	for i, e := range entries {
		if e.IntracellularID != int64(i) {
			t.Fatalf("entry %d has intracellular ID %d", i, e.IntracellularID)
		}
	}
	wantSim := []int64{0, 0, 1, 1, 2, 2}
	wantSeq := []int64{0, 0, 0, 0, 1, 1}
	for i, e := range entries {
		if e.SimultaneousID != wantSim[i] {
			t.Fatalf("entry %d simultaneous ID %d, want %d", i, e.SimultaneousID, wantSim[i])
		}
		if e.SequentialID != wantSeq[i] {
			t.Fatalf("entry %d sequential ID %d, want %d", i, e.SequentialID, wantSeq[i])
		}
	}
	if first[0].RelativeStartSeconds != 0 {
		t.Fatalf("first file relative start %d, want 0", first[0].RelativeStartSeconds)
	}
	if second[0].RelativeStartSeconds != 90 {
		t.Fatalf("second file relative start %d, want 90", second[0].RelativeStartSeconds)
	}
	// Electrode alternates within each segment.
	if entries[0].ElectrodeName != "el0" || entries[1].ElectrodeName != "el1" {
		t.Fatalf("segment-major order broken: %s %s", entries[0].ElectrodeName, entries[1].ElectrodeName)
	}
}

func TestIndexerOutOfOrderFileYieldsNegativeRelative(t *testing.T) {
	ix := NewIndexer(0, 0, 0, domain.FirstStart{})
	start := time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, err := ix.BeginFile(FileSpan{FileName: "late.abf", Start: start, Segments: 1, Electrodes: []string{"el0"}, Commands: 1}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	cur, err := ix.BeginFile(FileSpan{FileName: "early.abf", Start: start.Add(-30 * time.Second), Segments: 1, Electrodes: []string{"el0"}, Commands: 1})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	entries := cur.Drain()
	if entries[0].RelativeStartSeconds != -30 {
		t.Fatalf("relative start %d, want -30", entries[0].RelativeStartSeconds)
	}
}

func TestIndexerZeroCommandsMeansIZero(t *testing.T) {
	ix := NewIndexer(0, 0, 0, domain.FirstStart{})
	cur, err := ix.BeginFile(FileSpan{
		FileName:   "passive.abf",
		Start:      time.Now(),
		Segments:   2,
		Electrodes: []string{"el0"},
		Commands:   0,
	})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	entries := cur.Drain()
	for _, e := range entries {
		if e.ExperimentType != domain.ExperimentIZero {
			t.Fatalf("experiment type %q, want i_zero", e.ExperimentType)
		}
		if e.StimulusType != domain.StimulusNotDescribed {
			t.Fatalf("stimulus %q, want %q", e.StimulusType, domain.StimulusNotDescribed)
		}
	}
}

func TestIndexerSideTableOverridesDefaults(t *testing.T) {
	ix := NewIndexer(0, 0, 0, domain.FirstStart{})
	cur, err := ix.BeginFile(FileSpan{
		FileName:   "steps.abf",
		Start:      time.Now(),
		Segments:   1,
		Electrodes: []string{"el0"},
		Commands:   1,
		Session: domain.SessionInfo{
			FileName:       "steps.abf",
			StimulusType:   "square pulse",
			ExperimentType: domain.ExperimentCurrentClamp,
		},
	})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	entry := cur.Drain()[0]
	if entry.StimulusType != "square pulse" {
		t.Fatalf("stimulus %q", entry.StimulusType)
	}
	if entry.ExperimentType != domain.ExperimentCurrentClamp {
		t.Fatalf("experiment %q", entry.ExperimentType)
	}
}

func TestIndexerCommandSegmentMismatchIsFatal(t *testing.T) {
	ix := NewIndexer(0, 0, 0, domain.FirstStart{})
	_, err := ix.BeginFile(FileSpan{
		FileName:   "bad.abf",
		Start:      time.Now(),
		Segments:   3,
		Electrodes: []string{"el0"},
		Commands:   2,
	})
	var mismatch domain.StructuralMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected StructuralMismatchError, got %v", err)
	}
	if mismatch.FileName != "bad.abf" {
		t.Fatalf("mismatch names wrong file: %+v", mismatch)
	}
}

func TestIndexerCommitRoundTrip(t *testing.T) {
	c := domain.NewContainer()
	start := time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)

	ix := IndexerFor(c)
	cur, err := ix.BeginFile(FileSpan{FileName: "a.abf", Start: start, Segments: 2, Electrodes: []string{"el0"}, Commands: 2})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	c.Recordings = append(c.Recordings, cur.Drain()...)
	ix.CommitTo(c)

	// A fresh indexer seeded from the container continues the sequences.
	ix = IndexerFor(c)
	cur, err = ix.BeginFile(FileSpan{FileName: "b.abf", Start: start.Add(time.Minute), Segments: 1, Electrodes: []string{"el0"}, Commands: 1})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	entries := cur.Drain()
	if entries[0].IntracellularID != 2 || entries[0].SimultaneousID != 2 || entries[0].SequentialID != 1 {
		t.Fatalf("counters not carried: %+v", entries[0])
	}
	if entries[0].RelativeStartSeconds != 60 {
		t.Fatalf("first-start anchor not carried: %d", entries[0].RelativeStartSeconds)
	}
}
