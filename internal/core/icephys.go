package core

import (
	"fmt"
	"time"

	"neurocore/pkg/domain"
)

// FileSpan describes one file's contribution to the intracellular recording
// index: its ordered segment count, its ordered electrode names, and the
// number of raw command traces observed in the file.
type FileSpan struct {
	FileName   string
	Start      time.Time
	Segments   int
	Electrodes []string
	Commands   int
	// Session carries the optional side-table entry for this file; zero
	// value means the file is not described.
	Session domain.SessionInfo
}

// Indexer assigns the nested table identifiers for intracellular data. The
// three counters are carried as fold state seeded from the container, so
// identifiers stay globally consistent across any number of independent
// append calls. File order is caller-supplied and never re-sorted; files
// passed out of chronological order yield negative relative start times.
type Indexer struct {
	nextIntracellular int64
	nextSimultaneous  int64
	nextSequential    int64
	first             domain.FirstStart
}

// NewIndexer constructs an indexer from explicit counter state. Tests use
// this directly; production code goes through IndexerFor.
func NewIndexer(nextIntracellular, nextSimultaneous, nextSequential int64, first domain.FirstStart) *Indexer {
	return &Indexer{
		nextIntracellular: nextIntracellular,
		nextSimultaneous:  nextSimultaneous,
		nextSequential:    nextSequential,
		first:             first,
	}
}

// IndexerFor seeds an indexer from the container's accumulated counter
// state.
func IndexerFor(c *domain.Container) *Indexer {
	return NewIndexer(c.NextIntracellularID(), c.NextSimultaneousID, c.NextSequentialID, c.First)
}

// CommitTo writes the advanced counter state back to the container after a
// file's entries have been appended.
func (ix *Indexer) CommitTo(c *domain.Container) {
	c.NextSimultaneousID = ix.nextSimultaneous
	c.NextSequentialID = ix.nextSequential
	c.First = ix.first
}

// FileEntries lazily produces the recording entries for one file. All
// counter arithmetic is local: the identifiers were reserved when the cursor
// was created.
type FileEntries struct {
	span         FileSpan
	experiment   domain.ExperimentType
	stimulus     string
	relative     int64
	intracBase   int64
	simBase      int64
	sequentialID int64
	pos          int
}

// BeginFile validates the file's structure and reserves its identifier
// ranges. The command-trace count must match the segment count unless the
// file carries no commands at all, in which case the experiment type
// defaults to i_zero. A mismatch is fatal before any entry is produced.
func (ix *Indexer) BeginFile(span FileSpan) (*FileEntries, error) {
	if span.Segments < 0 {
		return nil, domain.StructuralMismatchError{FileName: span.FileName, Detail: fmt.Sprintf("negative segment count %d", span.Segments)}
	}
	experiment := span.Session.ExperimentType
	if span.Commands == 0 {
		if experiment == "" {
			experiment = domain.ExperimentIZero
		}
	} else if span.Commands != span.Segments {
		return nil, domain.StructuralMismatchError{
			FileName: span.FileName,
			Detail:   fmt.Sprintf("inconsistent number of segments (%d) and commands (%d)", span.Segments, span.Commands),
		}
	}
	stimulus := span.Session.StimulusType
	if stimulus == "" {
		stimulus = domain.StimulusNotDescribed
	}

	if !ix.first.Set {
		ix.first = domain.FirstStart{Set: true, Time: span.Start}
	}
	relative := int64(span.Start.Sub(ix.first.Time) / time.Second)

	cur := &FileEntries{
		span:         span,
		experiment:   experiment,
		stimulus:     stimulus,
		relative:     relative,
		intracBase:   ix.nextIntracellular,
		simBase:      ix.nextSimultaneous,
		sequentialID: ix.nextSequential,
	}
	ix.nextIntracellular += int64(span.Segments * len(span.Electrodes))
	ix.nextSimultaneous += int64(span.Segments)
	ix.nextSequential++
	return cur, nil
}

// Next returns the next entry for the file, in segment-major order: all
// electrodes of a segment share one simultaneous identifier, all segments of
// the file share one sequential identifier.
func (f *FileEntries) Next() (domain.IntracellularRecording, bool) {
	total := f.span.Segments * len(f.span.Electrodes)
	if f.pos >= total {
		return domain.IntracellularRecording{}, false
	}
	seg := f.pos / len(f.span.Electrodes)
	el := f.pos % len(f.span.Electrodes)
	entry := domain.IntracellularRecording{
		IntracellularID:      f.intracBase + int64(f.pos),
		SimultaneousID:       f.simBase + int64(seg),
		SequentialID:         f.sequentialID,
		RelativeStartSeconds: f.relative,
		StimulusType:         f.stimulus,
		ExperimentType:       f.experiment,
		ElectrodeName:        f.span.Electrodes[el],
		FileName:             f.span.FileName,
	}
	f.pos++
	return entry, true
}

// Drain collects the remaining entries into a slice.
func (f *FileEntries) Drain() []domain.IntracellularRecording {
	out := make([]domain.IntracellularRecording, 0, f.span.Segments*len(f.span.Electrodes)-f.pos)
	for {
		entry, ok := f.Next()
		if !ok {
			return out
		}
		out = append(out, entry)
	}
}
