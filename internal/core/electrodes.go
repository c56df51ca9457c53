package core

import (
	"sort"

	"neurocore/internal/reader"
	"neurocore/pkg/domain"
)

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Built-in columns every channel contributes in addition to caller-supplied
// properties.
const (
	columnSamplingRate = "sampling_rate"
	columnStartTime    = "start_time"
	columnChannelName  = "channel_name"
)

// AppendElectrodes appends exactly one electrode row per physical channel in
// channel order, wiring each row to its resolved group and applying the
// merged column schema. Row IDs continue the container's existing sequence:
// the first new row receives the current row count. The schema merge is
// validated before any mutation, so a conflict leaves both the schema and
// the table untouched.
func AppendElectrodes(c *domain.Container, channels []reader.Channel, groups []domain.ElectrodeGroup) error {
	if len(channels) == 0 {
		return nil
	}

	batches := make([]map[string]any, len(channels))
	for i, ch := range channels {
		props := make(map[string]any, len(ch.Properties)+3)
		for k, v := range ch.Properties {
			if domain.ReservedColumn(k) {
				continue
			}
			props[k] = domain.NormalizeValue(v)
		}
		props[columnChannelName] = ch.Name
		props[columnSamplingRate] = ch.SamplingRateHz
		props[columnStartTime] = ch.StartSeconds
		batches[i] = props
	}

	incoming, err := InferColumns(batches)
	if err != nil {
		return err
	}
	merged, plan, err := MergeColumns(c.Columns, incoming)
	if err != nil {
		return err
	}

	// Validation done; mutate. Back-fill first so existing rows are
	// homogeneous the moment the schema grows.
	c.Columns = merged
	Backfill(c.Electrodes, plan)

	nextID := c.RowCount()
	for i, props := range batches {
		FillToSchema(props, merged)
		row := domain.ElectrodeRow{
			ID:        nextID,
			GroupName: groups[i].Name,
			Columns:   props,
		}
		c.Electrodes = append(c.Electrodes, row)
		nextID++
	}
	return nil
}
