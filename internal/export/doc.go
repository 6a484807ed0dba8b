// Package export implements the export builder's configuration model.
//
// Everything here is pure, in-memory logic with no transport or storage
// dependencies. It can be used by web handlers, the CLI, or tests without
// modification.
//
// # Architecture
//
//   - Catalog: a registry of exportable datasets and their fields. Datasets
//     are registered at init time (see package datasets) or loaded from YAML
//     with [LoadCatalog].
//   - Config: an immutable value describing one export (dataset, date range,
//     granularity, filters, columns, format, destination). Every transition
//     returns a new Config; [Apply] dispatches typed actions to them.
//   - FilterList: ordered predicates combined with AND.
//   - ColumnSelection: the ordered selected columns and the remainder.
//   - Estimator: the seam for row/size projection. [Projector] is the
//     built-in deterministic implementation.
//   - Summary: the display model produced from a Config and an Estimate,
//     rendered as HTML by [SummaryCard].
//
// # Filter operators
//
// Operators are restricted per field type:
//
//	string          contains, =, ≠, starts with, ends with
//	number/currency =, ≠, >, ≥, <, ≤
//	datetime        =, >, ≥, <, ≤
//	enum            =, is any of
//	boolean         =
//
// Adding a filter with any other combination fails with
// [ErrOperatorNotAllowed].
//
// # Personal data
//
// Fields flagged PII are always surfaced. Adding a PII column or filter
// clears the acknowledgement flag, and export actions refuse with
// [ErrPIIUnacknowledged] until it is set again.
package export
