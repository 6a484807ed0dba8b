package export

import (
	"fmt"
	"math"
	"time"
)

// Granularity is the time bucketing applied before export.
type Granularity string

const (
	GranularityRaw     Granularity = "raw"
	GranularityHourly  Granularity = "hourly"
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityRaw, GranularityHourly, GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// Format is the output file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatExcel, FormatPDF:
		return true
	}
	return false
}

// Destination is where a finished export is delivered.
type Destination string

const (
	DestinationDownload Destination = "download"
	DestinationEmail    Destination = "email"
	DestinationSFTP     Destination = "sftp"
)

// Valid reports whether d is a known destination.
func (d Destination) Valid() bool {
	switch d {
	case DestinationDownload, DestinationEmail, DestinationSFTP:
		return true
	}
	return false
}

// DefaultRangeDays is the length of the date range a new config starts with.
const DefaultRangeDays = 30

// DateRange is the half-open interval [Start, End) of records to export.
type DateRange struct {
	Start    time.Time `json:"start" msgpack:"start"`
	End      time.Time `json:"end" msgpack:"end"`
	Timezone string    `json:"timezone" msgpack:"timezone"`
}

// Days returns the number of days covered, rounding partial days up.
// An empty range counts as one day.
func (r DateRange) Days() int64 {
	d := r.End.Sub(r.Start)
	if d <= 0 {
		return 1
	}
	return int64(math.Ceil(d.Hours() / 24))
}

// Hours returns the number of hours covered, rounding up, minimum one.
func (r DateRange) Hours() int64 {
	d := r.End.Sub(r.Start)
	if d <= 0 {
		return 1
	}
	return int64(math.Ceil(d.Hours()))
}

// NewDateRange validates and builds a range. An empty timezone means UTC.
func NewDateRange(start, end time.Time, tz string) (DateRange, error) {
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidDateRange, tz)
	}
	if start.IsZero() || end.IsZero() {
		return DateRange{}, fmt.Errorf("%w: start and end are required", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: end is before start", ErrInvalidDateRange)
	}
	return DateRange{Start: start.In(loc), End: end.In(loc), Timezone: tz}, nil
}

// Config is the complete, immutable description of one export.
// Transitions return a new Config and leave the receiver untouched.
type Config struct {
	Dataset         string          `json:"dataset"`
	Range           DateRange       `json:"dateRange"`
	Granularity     Granularity     `json:"granularity"`
	Filters         FilterList      `json:"filters"`
	Columns         ColumnSelection `json:"columns"`
	Format          Format          `json:"format"`
	Destination     Destination     `json:"destination"`
	PIIAcknowledged bool            `json:"piiAcknowledged"`
}

// NewConfig returns the starting config for ds: the last DefaultRangeDays
// days ending at now, daily buckets, CSV download, default columns.
func NewConfig(ds *Dataset, now time.Time) (Config, error) {
	now = now.UTC()
	cfg := Config{
		Range: DateRange{
			Start:    now.AddDate(0, 0, -DefaultRangeDays),
			End:      now,
			Timezone: "UTC",
		},
		Granularity: GranularityDaily,
		Format:      FormatCSV,
		Destination: DestinationDownload,
	}
	return cfg.SelectDataset(ds)
}

// SelectDataset switches to ds. Filters are cleared and columns reset to
// the dataset's defaults.
func (c Config) SelectDataset(ds *Dataset) (Config, error) {
	if ds == nil {
		return c, ErrUnknownDataset
	}
	if !ds.Enabled {
		return c, fmt.Errorf("%w: %s", ErrDatasetDisabled, ds.ID)
	}

	next := c
	next.Dataset = ds.ID
	next.Filters = FilterList{}
	next.Columns = NewColumnSelection(ds, ds.DefaultColumns()...)
	next.PIIAcknowledged = false
	return next, nil
}

// SetDateRange replaces the date range.
func (c Config) SetDateRange(start, end time.Time, tz string) (Config, error) {
	r, err := NewDateRange(start, end, tz)
	if err != nil {
		return c, err
	}
	next := c
	next.Range = r
	return next, nil
}

// SetGranularity replaces the time bucketing.
func (c Config) SetGranularity(g Granularity) (Config, error) {
	if !g.Valid() {
		return c, fmt.Errorf("%w: granularity %q", ErrInvalidOption, g)
	}
	next := c
	next.Granularity = g
	return next, nil
}

// SetFormat replaces the output format.
func (c Config) SetFormat(f Format) (Config, error) {
	if !f.Valid() {
		return c, fmt.Errorf("%w: format %q", ErrInvalidOption, f)
	}
	next := c
	next.Format = f
	return next, nil
}

// SetDestination replaces the delivery destination.
func (c Config) SetDestination(d Destination) (Config, error) {
	if !d.Valid() {
		return c, fmt.Errorf("%w: destination %q", ErrInvalidOption, d)
	}
	next := c
	next.Destination = d
	return next, nil
}

// AddFilter appends a validated filter.
func (c Config) AddFilter(ds *Dataset, field string, op Operator, value any) (Config, error) {
	if err := c.checkDataset(ds); err != nil {
		return c, err
	}
	filters, added, err := c.Filters.Add(ds, field, op, value)
	if err != nil {
		return c, err
	}
	next := c
	next.Filters = filters
	if f, _ := ds.Field(added.Field); f.PII {
		next.PIIAcknowledged = false
	}
	return next, nil
}

// RemoveFilter drops a filter by id. Absent ids are ignored.
func (c Config) RemoveFilter(id string) Config {
	next := c
	next.Filters = c.Filters.Remove(id)
	return next
}

// ClearFilters removes every filter.
func (c Config) ClearFilters() Config {
	next := c
	next.Filters = c.Filters.Clear()
	return next
}

// ToggleColumn selects or deselects a column.
func (c Config) ToggleColumn(ds *Dataset, key string) Config {
	return c.withColumns(ds, c.Columns.Toggle(key))
}

// RemoveColumn deselects a column.
func (c Config) RemoveColumn(key string) Config {
	next := c
	next.Columns = c.Columns.Remove(key)
	return next
}

// SelectAllColumns selects every field of the dataset.
func (c Config) SelectAllColumns(ds *Dataset) Config {
	return c.withColumns(ds, c.Columns.SelectAll())
}

// ClearColumns deselects every field.
func (c Config) ClearColumns() Config {
	next := c
	next.Columns = c.Columns.ClearAll()
	return next
}

// MoveColumn reorders a selected column.
func (c Config) MoveColumn(key string, index int) Config {
	next := c
	next.Columns = c.Columns.Move(key, index)
	return next
}

// AcknowledgePII records that the user accepted exporting personal data.
func (c Config) AcknowledgePII() Config {
	next := c
	next.PIIAcknowledged = true
	return next
}

// SelectedPII returns the selected column keys that carry personal data,
// in export order.
func (c Config) SelectedPII(ds *Dataset) []string {
	if ds == nil {
		return nil
	}
	var keys []string
	for _, key := range c.Columns.Selected() {
		if f, ok := ds.Field(key); ok && f.PII {
			keys = append(keys, key)
		}
	}
	return keys
}

// RequiresPIIAck reports whether personal data is involved and has not
// been acknowledged.
func (c Config) RequiresPIIAck(ds *Dataset) bool {
	if c.PIIAcknowledged {
		return false
	}
	return len(c.SelectedPII(ds)) > 0 || c.Filters.HasPII(ds)
}

// ReadyForExport checks the preconditions shared by every export action.
func (c Config) ReadyForExport(ds *Dataset) error {
	if err := c.checkDataset(ds); err != nil {
		return err
	}
	if !ds.Enabled {
		return fmt.Errorf("%w: %s", ErrDatasetDisabled, ds.ID)
	}
	if c.Columns.Len() == 0 {
		return ErrNoColumns
	}
	if c.RequiresPIIAck(ds) {
		return ErrPIIUnacknowledged
	}
	return nil
}

// withColumns installs a new selection, dropping the acknowledgement when
// the selection gains a PII column.
func (c Config) withColumns(ds *Dataset, cols ColumnSelection) Config {
	next := c
	next.Columns = cols
	if ds != nil && c.PIIAcknowledged {
		before := len(c.SelectedPII(ds))
		if len(next.SelectedPII(ds)) > before {
			next.PIIAcknowledged = false
		}
	}
	return next
}

func (c Config) checkDataset(ds *Dataset) error {
	if ds == nil || ds.ID != c.Dataset {
		return ErrUnknownDataset
	}
	return nil
}
