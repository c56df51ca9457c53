package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"neurocore/internal/blob"
	"neurocore/pkg/domain"
)

// ExportSnapshot serializes the container and writes it to the blob store
// under exports/<name>.json. The blob carries row and entry counts as user
// metadata so consumers can inspect an export without downloading it.
func ExportSnapshot(ctx context.Context, store blob.Store, c *domain.Container, name string) (blob.Info, error) {
	if name == "" {
		return blob.Info{}, fmt.Errorf("export name required")
	}
	payload, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode container: %w", err)
	}
	key := "exports/" + name + ".json"
	info, err := store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"electrode_rows": strconv.FormatInt(c.RowCount(), 10),
			"recordings":     strconv.Itoa(len(c.Recordings)),
			"devices":        strconv.Itoa(len(c.Devices)),
		},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store snapshot: %w", err)
	}
	return info, nil
}

// LoadSnapshot reads a previously exported container back from the blob
// store and normalizes float sentinels.
func LoadSnapshot(ctx context.Context, store blob.Store, name string) (*domain.Container, error) {
	key := "exports/" + name + ".json"
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer func() { _ = rc.Close() }()
	container := domain.NewContainer()
	if err := json.NewDecoder(rc).Decode(container); err != nil {
		return nil, fmt.Errorf("decode container: %w", err)
	}
	container.Normalize()
	return container, nil
}
