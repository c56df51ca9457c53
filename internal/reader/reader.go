// Package reader defines the normalized in-memory view of one recording
// session that the engine consumes. Vendor binary parsing lives behind this
// interface and is out of scope for neurocore.
package reader

import "time"

// Channel describes one physical channel as enumerated by the upstream
// format reader. Enumeration order is significant and preserved by the
// engine; channels are never reordered or renamed across append calls.
type Channel struct {
	// Name is the vendor channel label.
	Name string
	// GroupName optionally links the channel to an electrode group
	// descriptor; empty means the engine assigns the default group.
	GroupName string
	// SamplingRateHz is the per-channel sampling rate.
	SamplingRateHz float64
	// StartSeconds is the channel's signal start offset within the file.
	StartSeconds float64
	// Properties holds per-channel values destined for electrode table
	// columns. Unrecognized keys pass through opaquely.
	Properties map[string]any
}

// Session is a normalized handle on one recorded file: ordered channel and
// segment enumeration plus the recording's wall-clock start.
type Session interface {
	// FileName identifies the source file; used for side-table lookup.
	FileName() string
	// StartTime is the wall-clock start of the recording.
	StartTime() time.Time
	// Channels returns the ordered channel enumeration.
	Channels() []Channel
	// Segments returns the ordered segment count for the recording block.
	Segments() int
	// CommandTraces returns the number of raw command/stimulus traces in
	// the file; zero means the recording was captured without commands.
	CommandTraces() int
}
