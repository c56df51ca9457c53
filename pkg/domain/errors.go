package domain

import "fmt"

// SchemaConflictError reports a column declared with incompatible types
// across append calls. The conflicting column is never partially mutated.
type SchemaConflictError struct {
	Column   string
	Declared ColumnType
	Incoming ColumnType
}

func (e SchemaConflictError) Error() string {
	return fmt.Sprintf("column %q declared as %s conflicts with incoming type %s", e.Column, e.Declared, e.Incoming)
}

// StructuralMismatchError reports declared counts inconsistent with observed
// data, e.g. a command-trace count that does not match a file's segment
// count. Raised before any row is appended for the affected file.
type StructuralMismatchError struct {
	FileName string
	Detail   string
}

func (e StructuralMismatchError) Error() string {
	return fmt.Sprintf("file %s: %s", e.FileName, e.Detail)
}

// MalformedMetadataError reports a caller-supplied metadata override that is
// not shaped as a sequence of per-entity mappings. Rejected before any
// resolution begins.
type MalformedMetadataError struct {
	Key    string
	Detail string
}

func (e MalformedMetadataError) Error() string {
	return fmt.Sprintf("metadata[%s]: %s", e.Key, e.Detail)
}
