// Command convert merges the sessions listed in a manifest into the
// container store, applying optional metadata overrides, and optionally
// exports the resulting container snapshot to the configured blob store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"neurocore/internal/blob"
	"neurocore/internal/core"
	"neurocore/internal/reader"
	"neurocore/pkg/domain"
)

const (
	modeRecording = "recording"
	modeIcephys   = "icephys"
)

var exitFunc = os.Exit

// manifest is the YAML document describing the sessions to merge.
type manifest struct {
	Mode     string            `yaml:"mode"`
	Sessions []manifestSession `yaml:"sessions"`
}

type manifestSession struct {
	FileName      string            `yaml:"file_name"`
	StartTime     time.Time         `yaml:"start_time"`
	Segments      int               `yaml:"segments"`
	CommandTraces int               `yaml:"command_traces"`
	Channels      []manifestChannel `yaml:"channels"`
}

type manifestChannel struct {
	Name           string         `yaml:"name"`
	GroupName      string         `yaml:"group_name"`
	SamplingRateHz float64        `yaml:"sampling_rate_hz"`
	StartSeconds   float64        `yaml:"start_seconds"`
	Properties     map[string]any `yaml:"properties"`
}

// session adapts a manifest entry to the reader contract.
type session struct {
	spec manifestSession
}

func (s session) FileName() string     { return s.spec.FileName }
func (s session) StartTime() time.Time { return s.spec.StartTime }
func (s session) Segments() int        { return s.spec.Segments }
func (s session) CommandTraces() int   { return s.spec.CommandTraces }

func (s session) Channels() []reader.Channel {
	out := make([]reader.Channel, len(s.spec.Channels))
	for i, ch := range s.spec.Channels {
		out[i] = reader.Channel{
			Name:           ch.Name,
			GroupName:      ch.GroupName,
			SamplingRateHz: ch.SamplingRateHz,
			StartSeconds:   ch.StartSeconds,
			Properties:     ch.Properties,
		}
	}
	return out
}

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		manifestPath string
		metadataPath string
		exportName   string
	)
	fs.StringVar(&manifestPath, "manifest", "", "path to session manifest yaml (required)")
	fs.StringVar(&metadataPath, "metadata", "", "path to metadata overrides yaml (optional)")
	fs.StringVar(&exportName, "export", "", "export the merged container snapshot under this name (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if manifestPath == "" {
		fmt.Fprintln(stderr, "convert: -manifest is required")
		fs.Usage()
		return 2
	}

	m, err := loadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}
	overrides, err := loadOverrides(metadataPath)
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}

	ctx := context.Background()
	store, err := core.OpenPersistentStore()
	if err != nil {
		fmt.Fprintf(stderr, "convert: open store: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	normalizer := core.NewNormalizer(core.WithMetricsRecorder(core.NewExpvarMetricsRecorder("")))
	if err := run(ctx, store, normalizer, m, overrides, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}

	if exportName != "" {
		if err := export(ctx, store, exportName, stdout); err != nil {
			fmt.Fprintf(stderr, "convert: %v\n", err)
			return 1
		}
	}
	return 0
}

func run(ctx context.Context, store core.PersistentStore, normalizer *core.Normalizer, m manifest, overrides map[string]any, stdout, stderr io.Writer) error {
	mode := m.Mode
	if mode == "" {
		mode = modeRecording
	}
	if mode != modeRecording && mode != modeIcephys {
		return fmt.Errorf("unknown mode %q", mode)
	}
	for _, spec := range m.Sessions {
		sess := session{spec: spec}
		res, err := store.Append(ctx, func(c *domain.Container) (domain.Result, error) {
			switch mode {
			case modeIcephys:
				_, res, err := normalizer.AddIcephysSession(ctx, c, sess, overrides)
				return res, err
			default:
				return normalizer.AddRecording(ctx, c, sess, overrides)
			}
		})
		for _, w := range res.Warnings {
			fmt.Fprintf(stderr, "warning: %s: %s\n", w.Code, w.Message)
		}
		if err != nil {
			return fmt.Errorf("merge %s: %w", spec.FileName, err)
		}
		fmt.Fprintf(stdout, "merged %s\n", spec.FileName)
	}
	return nil
}

func export(ctx context.Context, store core.PersistentStore, name string, stdout io.Writer) error {
	bs, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	return store.View(ctx, func(c *domain.Container) error {
		info, err := core.ExportSnapshot(ctx, bs, c, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "exported %s (%d bytes)\n", info.Key, info.Size)
		return nil
	})
}

func loadManifest(path string) (manifest, error) {
	var m manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Sessions) == 0 {
		return m, fmt.Errorf("manifest lists no sessions")
	}
	return m, nil
}

func loadOverrides(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return raw, nil
}
