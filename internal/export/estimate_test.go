package export

import (
	"context"
	"testing"
	"time"
)

func TestProjector_NotComputable(t *testing.T) {
	cat := testCatalog(t)
	p := NewProjector(cat)
	ctx := context.Background()

	tests := []struct {
		name    string
		dataset string
	}{
		{"no dataset", ""},
		{"unknown dataset", "ghost"},
		{"disabled dataset", "staff_shifts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := p.Estimate(ctx, Config{Dataset: tt.dataset})
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if est != NotComputable {
				t.Errorf("Estimate() = %+v, want NotComputable", est)
			}
		})
	}
}

func TestProject_RawRows(t *testing.T) {
	ds := testDataset()
	cfg := testConfig(t, ds)
	cfg, _ = cfg.SetGranularity(GranularityRaw)

	est := Project(ds, cfg)
	if !est.Computable {
		t.Fatal("Computable = false")
	}
	if want := ds.RowsPerDay * DefaultRangeDays; est.RowCount != want {
		t.Errorf("RowCount = %d, want %d", est.RowCount, want)
	}
	if est.TimeBucket != TimeOneToFive {
		t.Errorf("TimeBucket = %q, want %q", est.TimeBucket, TimeOneToFive)
	}
	if est.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes = %d, want > 0", est.FileSizeBytes)
	}
}

func TestProject_GranularityCapsRows(t *testing.T) {
	ds := testDataset()
	cfg := testConfig(t, ds)

	tests := []struct {
		g    Granularity
		want int64
	}{
		{GranularityHourly, 720},
		{GranularityDaily, 30},
		{GranularityWeekly, 5},
		{GranularityMonthly, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.g), func(t *testing.T) {
			next, err := cfg.SetGranularity(tt.g)
			if err != nil {
				t.Fatalf("SetGranularity() error = %v", err)
			}
			if got := Project(ds, next).RowCount; got != tt.want {
				t.Errorf("RowCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProject_FilterNeverIncreasesRows(t *testing.T) {
	ds := testDataset()
	base := testConfig(t, ds)
	base, _ = base.SetGranularity(GranularityRaw)
	base, _ = base.SetDateRange(testNow.AddDate(-1, 0, 0), testNow, "")

	candidates := []struct {
		field string
		op    Operator
		value any
	}{
		{"channel", OpEquals, "dine_in"},
		{"channel", OpIn, []string{"dine_in", "takeout", "delivery", "catering"}},
		{"total", OpGreaterEq, 50},
		{"total", OpNotEquals, 0},
		{"order_id", OpContains, "A"},
		{"order_id", OpNotEquals, "A-1"},
		{"placed_at", OpLess, "2026-02-01"},
		{"is_first_order", OpEquals, true},
		{"customer_email", OpEndsWith, "@example.com"},
	}

	// Check every candidate against an empty set and against a set that
	// already holds each other candidate.
	starts := []Config{base}
	for _, c := range candidates {
		cfg, err := base.AddFilter(ds, c.field, c.op, c.value)
		if err != nil {
			t.Fatalf("AddFilter(%s %s) error = %v", c.field, c.op, err)
		}
		starts = append(starts, cfg)
	}

	for _, start := range starts {
		before := Project(ds, start).RowCount
		for _, c := range candidates {
			next, err := start.AddFilter(ds, c.field, c.op, c.value)
			if err != nil {
				t.Fatalf("AddFilter(%s %s) error = %v", c.field, c.op, err)
			}
			if after := Project(ds, next).RowCount; after > before {
				t.Errorf("adding %s %s to %d filters: rows %d -> %d", c.field, c.op, start.Filters.Len(), before, after)
			}
		}
	}
}

func TestProject_PIIColumnCount(t *testing.T) {
	ds := testDataset()
	cfg := testConfig(t, ds)

	configs := []Config{
		cfg,
		cfg.ToggleColumn(ds, "customer_email"),
		cfg.SelectAllColumns(ds),
		cfg.SelectAllColumns(ds).RemoveColumn("customer_name"),
		cfg.ClearColumns(),
	}
	for i, c := range configs {
		est := Project(ds, c)
		if want := len(c.SelectedPII(ds)); est.PIIColumnCount != want {
			t.Errorf("config %d: PIIColumnCount = %d, want %d", i, est.PIIColumnCount, want)
		}
	}
}

func TestProject_FileSizeByFormat(t *testing.T) {
	ds := testDataset()
	cfg := testConfig(t, ds)
	cfg, _ = cfg.SetGranularity(GranularityRaw)

	csvSize := Project(ds, cfg).FileSizeBytes
	excel, _ := cfg.SetFormat(FormatExcel)
	pdf, _ := cfg.SetFormat(FormatPDF)

	if got := Project(ds, excel).FileSizeBytes; got >= csvSize {
		t.Errorf("excel size %d >= csv size %d", got, csvSize)
	}
	if got := Project(ds, pdf).FileSizeBytes; got <= csvSize {
		t.Errorf("pdf size %d <= csv size %d", got, csvSize)
	}
	if got := Project(ds, cfg.ClearColumns()).FileSizeBytes; got != 0 {
		t.Errorf("size with no columns = %d, want 0", got)
	}
}

func TestTimeBucket(t *testing.T) {
	tests := []struct {
		rows      int64
		want      TimeBucket
		wantLabel string
	}{
		{0, TimeUnderMinute, "Under 1 minute"},
		{10_000, TimeUnderMinute, "Under 1 minute"},
		{10_001, TimeOneToFive, "1-5 minutes"},
		{2_000_000, TimeFiveToFifteen, "5-15 minutes"},
		{2_000_001, TimeOverFifteen, "15+ minutes"},
	}
	for _, tt := range tests {
		got := timeBucket(tt.rows)
		if got != tt.want {
			t.Errorf("timeBucket(%d) = %q, want %q", tt.rows, got, tt.want)
		}
		if got.Label() != tt.wantLabel {
			t.Errorf("Label() = %q, want %q", got.Label(), tt.wantLabel)
		}
	}
	if got := TimeBucket("").Label(); got != "—" {
		t.Errorf("empty Label() = %q, want —", got)
	}
}

func TestBucketCount_Hourly(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := DateRange{Start: start, End: start.Add(90 * time.Minute)}
	if got := bucketCount(r, GranularityHourly); got != 2 {
		t.Errorf("bucketCount(hourly) = %d, want 2", got)
	}
	if got := bucketCount(r, GranularityRaw); got != 0 {
		t.Errorf("bucketCount(raw) = %d, want 0", got)
	}
}
