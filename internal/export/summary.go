package export

import (
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultSummaryValidity is how long an estimate is shown as current.
const DefaultSummaryValidity = 24 * time.Hour

// Summary is the display model of an export configuration.
type Summary struct {
	Dataset             string       `json:"dataset" msgpack:"dataset"`
	DatasetName         string       `json:"datasetName" msgpack:"datasetName"`
	Computable          bool         `json:"computable" msgpack:"computable"`
	EstimatedRows       int64        `json:"estimatedRows" msgpack:"estimatedRows"`
	RowCountLabel       string       `json:"rowCountLabel" msgpack:"rowCountLabel"`
	FileSizeBytes       int64        `json:"fileSizeBytes" msgpack:"fileSizeBytes"`
	FileSizeLabel       string       `json:"fileSizeLabel" msgpack:"fileSizeLabel"`
	ProcessingTime      TimeBucket   `json:"processingTime" msgpack:"processingTime"`
	ProcessingTimeLabel string       `json:"processingTimeLabel" msgpack:"processingTimeLabel"`
	PIIColumnCount      int          `json:"piiColumnCount" msgpack:"piiColumnCount"`
	PIIFields           []string     `json:"piiFields" msgpack:"piiFields"`
	RequiresPIIAck      bool         `json:"requiresPiiAck" msgpack:"requiresPiiAck"`
	Columns             []string     `json:"columns" msgpack:"columns"`
	Filters             []FilterView `json:"filters" msgpack:"filters"`
	Granularity         Granularity  `json:"granularity" msgpack:"granularity"`
	Format              Format       `json:"format" msgpack:"format"`
	Destination         Destination  `json:"destination" msgpack:"destination"`
	DateRange           DateRange    `json:"dateRange" msgpack:"dateRange"`
	ValidUntil          time.Time    `json:"validUntil" msgpack:"validUntil"`
}

const notComputableLabel = "—"

// Summarize builds the display model. ds may be nil when the config has no
// usable dataset; the estimate is then expected to be NotComputable.
func Summarize(ds *Dataset, cfg Config, est Estimate, now time.Time, validity time.Duration) Summary {
	if validity <= 0 {
		validity = DefaultSummaryValidity
	}

	s := Summary{
		Dataset:        cfg.Dataset,
		Computable:     est.Computable,
		Granularity:    cfg.Granularity,
		Format:         cfg.Format,
		Destination:    cfg.Destination,
		DateRange:      cfg.Range,
		PIIFields:      []string{},
		Columns:        []string{},
		Filters:        []FilterView{},
		ValidUntil:     now.Add(validity).UTC(),
		RowCountLabel:  notComputableLabel,
		FileSizeLabel:  notComputableLabel,
		RequiresPIIAck: cfg.RequiresPIIAck(ds),
	}

	if ds != nil {
		s.DatasetName = ds.Name
		for _, key := range cfg.Columns.selected {
			if f, ok := ds.Field(key); ok {
				s.Columns = append(s.Columns, f.Label)
			}
		}
		s.PIIFields = append(s.PIIFields, cfg.SelectedPII(ds)...)
		s.PIIColumnCount = len(s.PIIFields)
	}
	for _, f := range cfg.Filters.items {
		s.Filters = append(s.Filters, f.Resolve(ds))
	}

	if !est.Computable {
		s.ProcessingTimeLabel = notComputableLabel
		return s
	}

	s.EstimatedRows = est.RowCount
	s.RowCountLabel = humanize.Comma(est.RowCount)
	s.FileSizeBytes = est.FileSizeBytes
	s.FileSizeLabel = humanize.Bytes(uint64(est.FileSizeBytes))
	s.ProcessingTime = est.TimeBucket
	s.ProcessingTimeLabel = est.TimeBucket.Label()
	return s
}
