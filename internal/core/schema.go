package core

import (
	"fmt"

	"neurocore/pkg/domain"
)

// BackfillPlan is the inspectable outcome of a schema merge, computed before
// any row is touched. Introduced columns require retroactively filling every
// previously written row with that column's sentinel; missing columns
// require sentinel-filling every row of the incoming batch.
type BackfillPlan struct {
	// Introduced lists columns new to the container, in batch order.
	Introduced []domain.ColumnSpec
	// Missing lists container columns absent from the incoming batch, in
	// schema order.
	Missing []domain.ColumnSpec
}

// Empty reports whether the merge requires no fill work in either direction.
func (p BackfillPlan) Empty() bool {
	return len(p.Introduced) == 0 && len(p.Missing) == 0
}

// MergeColumns reconciles the column set declared for the current append
// call against the schema already present in the container. It is pure:
// the returned schema appends introduced columns to a copy of existing, and
// the plan records the fill work without performing it. A column declared
// with an incompatible type across calls is fatal and nothing is merged.
// Reserved columns (group, group_name) must not appear in incoming.
func MergeColumns(existing, incoming []domain.ColumnSpec) ([]domain.ColumnSpec, BackfillPlan, error) {
	declared := make(map[string]domain.ColumnType, len(existing))
	for _, col := range existing {
		declared[col.Name] = col.Type
	}

	batch := make(map[string]domain.ColumnType, len(incoming))
	var plan BackfillPlan
	merged := append([]domain.ColumnSpec(nil), existing...)
	for _, col := range incoming {
		if domain.ReservedColumn(col.Name) {
			return nil, BackfillPlan{}, fmt.Errorf("column %q is reserved and derives from group resolution", col.Name)
		}
		if prev, ok := batch[col.Name]; ok {
			if prev != col.Type {
				return nil, BackfillPlan{}, domain.SchemaConflictError{Column: col.Name, Declared: prev, Incoming: col.Type}
			}
			continue
		}
		batch[col.Name] = col.Type
		if have, ok := declared[col.Name]; ok {
			if have != col.Type {
				return nil, BackfillPlan{}, domain.SchemaConflictError{Column: col.Name, Declared: have, Incoming: col.Type}
			}
			continue
		}
		merged = append(merged, col)
		plan.Introduced = append(plan.Introduced, col)
	}

	for _, col := range existing {
		if _, ok := batch[col.Name]; !ok {
			plan.Missing = append(plan.Missing, col)
		}
	}
	return merged, plan, nil
}

// Backfill retroactively gives every previously written row the sentinel for
// each introduced column. Only the introduced columns are touched; values in
// every other column are left as written and row order is preserved.
func Backfill(rows []domain.ElectrodeRow, plan BackfillPlan) {
	if len(plan.Introduced) == 0 {
		return
	}
	for i := range rows {
		if rows[i].Columns == nil {
			rows[i].Columns = make(map[string]any, len(plan.Introduced))
		}
		for _, col := range plan.Introduced {
			rows[i].Columns[col.Name] = col.Type.Sentinel()
		}
	}
}

// FillToSchema gives a row the sentinel for every schema column it lacks.
// This covers both container columns absent from the incoming batch and
// batch columns that only some channels of the batch carry.
func FillToSchema(columns map[string]any, schema []domain.ColumnSpec) {
	for _, col := range schema {
		if _, ok := columns[col.Name]; !ok {
			columns[col.Name] = col.Type.Sentinel()
		}
	}
}

// InferColumns derives the declared column specs for a batch of per-channel
// property maps, in first-seen key order across channels. Values of types
// the table cannot hold are fatal. Reserved keys are skipped: they derive
// from group resolution.
func InferColumns(batches []map[string]any) ([]domain.ColumnSpec, error) {
	var specs []domain.ColumnSpec
	seen := make(map[string]domain.ColumnType)
	var order []string
	for _, props := range batches {
		names := sortedKeys(props)
		for _, name := range names {
			if domain.ReservedColumn(name) {
				continue
			}
			t, ok := domain.ColumnOf(props[name])
			if !ok {
				return nil, fmt.Errorf("column %q: unsupported value type %T", name, props[name])
			}
			if prev, dup := seen[name]; dup {
				if prev != t {
					return nil, domain.SchemaConflictError{Column: name, Declared: prev, Incoming: t}
				}
				continue
			}
			seen[name] = t
			order = append(order, name)
		}
	}
	for _, name := range order {
		specs = append(specs, domain.ColumnSpec{Name: name, Type: seen[name], Description: domain.DefaultDescription})
	}
	return specs, nil
}
