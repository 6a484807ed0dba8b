package export

import (
	"context"
	"math"
)

// TimeBucket is a coarse processing-time estimate.
type TimeBucket string

const (
	TimeUnderMinute   TimeBucket = "under_1m"
	TimeOneToFive     TimeBucket = "1m_5m"
	TimeFiveToFifteen TimeBucket = "5m_15m"
	TimeOverFifteen   TimeBucket = "over_15m"
)

var timeBucketLabels = map[TimeBucket]string{
	TimeUnderMinute:   "Under 1 minute",
	TimeOneToFive:     "1-5 minutes",
	TimeFiveToFifteen: "5-15 minutes",
	TimeOverFifteen:   "15+ minutes",
}

// Label returns the display text for the bucket.
func (b TimeBucket) Label() string {
	if l, ok := timeBucketLabels[b]; ok {
		return l
	}
	return "—"
}

// Estimate is a display projection of an export's size.
type Estimate struct {
	Computable     bool
	RowCount       int64
	FileSizeBytes  int64
	TimeBucket     TimeBucket
	PIIColumnCount int
}

// NotComputable is returned when no enabled dataset is selected.
var NotComputable = Estimate{}

// Estimator projects the size of an export. Implementations backed by a
// real row count can replace Projector without touching presentation.
type Estimator interface {
	Estimate(ctx context.Context, cfg Config) (Estimate, error)
}

// Bytes per value by field type, including quoting.
var columnWidths = map[FieldType]int64{
	FieldString:   24,
	FieldNumber:   10,
	FieldCurrency: 12,
	FieldDatetime: 25,
	FieldEnum:     12,
	FieldBoolean:  5,
}

// Size multipliers relative to CSV.
var formatFactors = map[Format]float64{
	FormatCSV:   1.0,
	FormatExcel: 0.45,
	FormatPDF:   2.5,
}

// Fixed selectivities for operators that do not depend on the field.
const (
	selectivityOrdering = 0.5
	selectivityContains = 0.3
	selectivityAffix    = 0.2
	selectivityText     = 0.1
	selectivityPoint    = 0.05
	selectivityBoolean  = 0.5
)

// Projector is a deterministic Estimator driven by catalog statistics.
// Each filter scales the row count by a selectivity in (0, 1], so adding a
// filter never increases the projection.
type Projector struct {
	catalog *Catalog
}

// NewProjector returns a Projector reading datasets from cat.
func NewProjector(cat *Catalog) *Projector {
	return &Projector{catalog: cat}
}

// Estimate implements Estimator.
func (p *Projector) Estimate(_ context.Context, cfg Config) (Estimate, error) {
	ds, ok := p.catalog.Lookup(cfg.Dataset)
	if !ok || !ds.Enabled {
		return NotComputable, nil
	}
	return Project(ds, cfg), nil
}

// Project computes the estimate for cfg over ds without catalog lookup.
func Project(ds *Dataset, cfg Config) Estimate {
	raw := float64(ds.RowsPerDay) * float64(cfg.Range.Days())
	for _, f := range cfg.Filters.items {
		raw *= selectivity(ds, f)
	}
	rows := int64(math.Floor(raw))

	if buckets := bucketCount(cfg.Range, cfg.Granularity); buckets > 0 && rows > buckets {
		rows = buckets
	}

	return Estimate{
		Computable:     true,
		RowCount:       rows,
		FileSizeBytes:  fileSize(ds, cfg, rows),
		TimeBucket:     timeBucket(rows),
		PIIColumnCount: len(cfg.SelectedPII(ds)),
	}
}

// selectivity returns the fraction of rows a filter keeps.
func selectivity(ds *Dataset, f ActiveFilter) float64 {
	field, ok := ds.Field(f.Field)
	if !ok {
		return 1
	}

	switch f.Operator {
	case OpIn, OpEquals:
		eq := pointSelectivity(field)
		if field.Type == FieldEnum {
			if values, ok := f.Value.([]string); ok {
				eq = math.Min(1, float64(len(values))*eq)
			}
		}
		return eq
	case OpNotEquals:
		return 1 - pointSelectivity(field)
	case OpGreater, OpGreaterEq, OpLess, OpLessEq:
		return selectivityOrdering
	case OpContains:
		return selectivityContains
	case OpStartsWith, OpEndsWith:
		return selectivityAffix
	}
	return 1
}

// pointSelectivity is the fraction of rows matching a single value.
func pointSelectivity(field Field) float64 {
	switch field.Type {
	case FieldEnum:
		return 1 / float64(len(field.Values))
	case FieldBoolean:
		return selectivityBoolean
	case FieldString:
		return selectivityText
	}
	return selectivityPoint
}

// bucketCount returns the number of time buckets for aggregated exports,
// or 0 for raw exports.
func bucketCount(r DateRange, g Granularity) int64 {
	switch g {
	case GranularityHourly:
		return r.Hours()
	case GranularityDaily:
		return r.Days()
	case GranularityWeekly:
		return ceilDiv(r.Days(), 7)
	case GranularityMonthly:
		return ceilDiv(r.Days(), 30)
	}
	return 0
}

func fileSize(ds *Dataset, cfg Config, rows int64) int64 {
	var header, width int64
	for _, key := range cfg.Columns.selected {
		f, ok := ds.Field(key)
		if !ok {
			continue
		}
		header += int64(len(f.Label)) + 1
		width += columnWidths[f.Type] + 1
	}
	if width == 0 {
		return 0
	}

	factor, ok := formatFactors[cfg.Format]
	if !ok {
		factor = 1
	}
	return int64(math.Ceil(float64(header+rows*width) * factor))
}

func timeBucket(rows int64) TimeBucket {
	switch {
	case rows <= 10_000:
		return TimeUnderMinute
	case rows <= 250_000:
		return TimeOneToFive
	case rows <= 2_000_000:
		return TimeFiveToFifteen
	}
	return TimeOverFifteen
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
