package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteTemplate writes a CSV header row with the labels of the selected
// columns in export order.
func WriteTemplate(w io.Writer, ds *Dataset, cfg Config) error {
	if err := cfg.ReadyForExport(ds); err != nil {
		return err
	}

	header := make([]string, 0, cfg.Columns.Len())
	for _, key := range cfg.Columns.selected {
		if f, ok := ds.Field(key); ok {
			header = append(header, f.Label)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// TemplateFileName returns the download name for a dataset template.
func TemplateFileName(ds *Dataset) string {
	return fmt.Sprintf("%s_export_template.csv", ds.ID)
}
