// Package types defines the tabular data model for the trestle editor:
// typed cell values, per-column limiters, the Table container with its
// structural and cell-level mutations, and the snapshot History backing
// undo and redo. The session and CLI layers build on these types and add
// no invariants of their own.
package types
