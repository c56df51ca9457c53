package core

import (
	"context"
	"fmt"
	"time"

	"neurocore/internal/reader"
	"neurocore/pkg/domain"
)

// Operation names used for metrics.
const (
	opAddRecording = "add_recording"
	opAddIcephys   = "add_icephys_session"
)

// DefaultGroupName is the electrode group assigned to channels that name no
// group and for which no override is supplied.
const DefaultGroupName = "ElectrodeGroup"

// Normalizer is the engine entry point. It accepts normalized reader
// handles plus caller-supplied metadata overrides, resolves identities,
// merges column schemas, appends electrode rows, and assigns the
// hierarchical recording identifiers.
//
// Appends are synchronous and single-threaded: the caller (normally a
// persistent store) must serialize access to the container. Atomicity is
// per entity phase: a hard error aborts the append but leaves entities
// fully committed earlier in the same call in place.
type Normalizer struct {
	metrics MetricsRecorder
	nowFn   func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(n *Normalizer) {
		if rec != nil {
			n.metrics = rec
		}
	}
}

// WithClock overrides the clock used for operation timing (tests).
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.nowFn = now
		}
	}
}

// NewNormalizer constructs a normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		metrics: noopMetricsRecorder{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// AddRecording merges one extracellular session into the container:
// devices, electrode groups, and one electrode table row per physical
// channel. Overrides is the raw caller-supplied metadata mapping; a
// malformed override is rejected before any resolution begins.
func (n *Normalizer) AddRecording(ctx context.Context, c *domain.Container, session reader.Session, overrides map[string]any) (domain.Result, error) {
	started := n.nowFn()
	res, err := n.addRecording(c, session, overrides)
	n.metrics.Observe(ctx, opAddRecording, err == nil, n.nowFn().Sub(started))
	n.metrics.ObserveWarnings(opAddRecording, len(res.Warnings))
	return res, err
}

func (n *Normalizer) addRecording(c *domain.Container, session reader.Session, overrides map[string]any) (domain.Result, error) {
	var res domain.Result
	meta, err := ParseMetadata(overrides)
	if err != nil {
		return res, err
	}

	resolver := NewResolver(c, c, c)

	// Phase 1: declared devices.
	for _, dev := range meta.Devices {
		resolver.ResolveDevice(domain.Device{
			Name:         dev.Name,
			Description:  dev.Description,
			Manufacturer: dev.Manufacturer,
		}, &res)
	}

	// Phase 2: declared groups, then one resolved group per channel.
	for _, g := range meta.Groups {
		resolver.ResolveGroup(domain.ElectrodeGroup{
			Name:        g.Name,
			Description: g.Description,
			Location:    g.Location,
			DeviceName:  g.DeviceName,
		}, &res)
	}
	channels := session.Channels()
	groups := make([]domain.ElectrodeGroup, len(channels))
	for i, ch := range channels {
		name := ch.GroupName
		if name == "" {
			name = DefaultGroupName
		}
		groups[i] = resolver.EnsureGroup(name, &res)
	}

	// Phase 3: the electrode batch is one atomic schema-merge+append unit.
	merged := make([]reader.Channel, len(channels))
	for i, ch := range channels {
		merged[i] = ch
		if override, ok := meta.ElectrodeFor(ch.Name); ok && len(override.Extra) > 0 {
			props := make(map[string]any, len(ch.Properties)+len(override.Extra))
			for k, v := range ch.Properties {
				props[k] = v
			}
			for k, v := range override.Extra {
				props[k] = v
			}
			merged[i].Properties = props
		}
	}
	if err := AppendElectrodes(c, merged, groups); err != nil {
		return res, err
	}
	return res, nil
}

// AddIcephysSession merges one intracellular session into the container:
// devices, intracellular electrodes, and one recording index entry per
// (segment, electrode) pair. It returns the entries appended for this
// session, in emission order.
func (n *Normalizer) AddIcephysSession(ctx context.Context, c *domain.Container, session reader.Session, overrides map[string]any) ([]domain.IntracellularRecording, domain.Result, error) {
	started := n.nowFn()
	entries, res, err := n.addIcephysSession(c, session, overrides)
	n.metrics.Observe(ctx, opAddIcephys, err == nil, n.nowFn().Sub(started))
	n.metrics.ObserveWarnings(opAddIcephys, len(res.Warnings))
	return entries, res, err
}

func (n *Normalizer) addIcephysSession(c *domain.Container, session reader.Session, overrides map[string]any) ([]domain.IntracellularRecording, domain.Result, error) {
	var res domain.Result
	meta, err := ParseMetadata(overrides)
	if err != nil {
		return nil, res, err
	}

	resolver := NewResolver(c, c, c)

	// Phase 1: declared devices.
	for _, dev := range meta.Devices {
		resolver.ResolveDevice(domain.Device{
			Name:         dev.Name,
			Description:  dev.Description,
			Manufacturer: dev.Manufacturer,
		}, &res)
	}

	// Phase 2: intracellular electrodes, one per channel. Overrides win by
	// name; channels without an override get an auto-named electrode
	// linked to the first device.
	channels := session.Channels()
	electrodeNames := make([]string, len(channels))
	for i := range channels {
		req := domain.IcephysElectrode{Name: fmt.Sprintf("icephys_electrode_%d", i)}
		if i < len(meta.Electrodes) {
			override := meta.Electrodes[i]
			if override.Name != "" {
				req.Name = override.Name
			}
			req.Description = override.Description
			req.DeviceName = override.DeviceName
		}
		resolved := resolver.ResolveIcephysElectrode(req, &res)
		electrodeNames[i] = resolved.Name
	}

	// Phase 3: hierarchical index. Structural mismatch aborts before any
	// entry is appended for this file.
	ix := IndexerFor(c)
	cursor, err := ix.BeginFile(FileSpan{
		FileName:   session.FileName(),
		Start:      session.StartTime(),
		Segments:   session.Segments(),
		Electrodes: electrodeNames,
		Commands:   session.CommandTraces(),
		Session:    meta.SessionFor(session.FileName()),
	})
	if err != nil {
		return nil, res, err
	}
	entries := cursor.Drain()
	c.Recordings = append(c.Recordings, entries...)
	ix.CommitTo(c)
	return entries, res, nil
}
