// Package readertest provides an in-memory reader.Session implementation
// for engine tests and manifest-driven conversions.
package readertest

import (
	"strconv"
	"time"

	"neurocore/internal/reader"
)

// Session is a fully in-memory reader.Session.
type Session struct {
	Name         string
	Start        time.Time
	ChannelList  []reader.Channel
	SegmentCount int
	CommandCount int
}

var _ reader.Session = (*Session)(nil)

// FileName returns the configured file name.
func (s *Session) FileName() string { return s.Name }

// StartTime returns the configured wall-clock recording start.
func (s *Session) StartTime() time.Time { return s.Start }

// Channels returns the ordered channel list.
func (s *Session) Channels() []reader.Channel { return s.ChannelList }

// Segments returns the configured segment count.
func (s *Session) Segments() int { return s.SegmentCount }

// CommandTraces returns the configured command trace count.
func (s *Session) CommandTraces() int { return s.CommandCount }

// NewChannels builds n channels named prefix-0..n-1 with the given sampling
// rate, a convenience for tests.
func NewChannels(prefix string, n int, rateHz float64) []reader.Channel {
	out := make([]reader.Channel, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, reader.Channel{
			Name:           prefix + "-" + strconv.Itoa(i),
			SamplingRateHz: rateHz,
		})
	}
	return out
}
