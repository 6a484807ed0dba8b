// Package datasets registers the built-in export datasets.
// Import it for side effects:
//
//	import _ "github.com/JonMunkholm/backoffice/internal/export/datasets"
package datasets

import (
	"bytes"
	_ "embed"

	"github.com/JonMunkholm/backoffice/internal/export"
)

//go:embed catalog.yaml
var catalogYAML []byte

func init() {
	cat, err := export.LoadCatalog(bytes.NewReader(catalogYAML))
	if err != nil {
		panic("datasets: " + err.Error())
	}
	for _, ds := range cat.Datasets() {
		export.Register(*ds)
	}
}

// Seed returns the embedded catalog document.
func Seed() []byte {
	return bytes.Clone(catalogYAML)
}
