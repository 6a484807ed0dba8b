package export

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog is a registry of exportable datasets keyed by id.
type Catalog struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{datasets: make(map[string]*Dataset)}
}

// Register adds a dataset to the catalog.
// Returns an error if the id is taken or the dataset is malformed.
func (c *Catalog) Register(ds Dataset) error {
	ds.Fields = slices.Clone(ds.Fields)
	for i := range ds.Fields {
		if ds.Fields[i].Category == "" {
			ds.Fields[i].Category = CategoryGeneral
		}
	}
	if err := ds.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.datasets[ds.ID]; exists {
		return fmt.Errorf("dataset already registered: %s", ds.ID)
	}
	c.datasets[ds.ID] = &ds
	return nil
}

// Lookup returns a dataset by id.
func (c *Catalog) Lookup(id string) (*Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ds, ok := c.datasets[id]
	return ds, ok
}

// Datasets returns all datasets, most popular first, then by id.
func (c *Catalog) Datasets() []*Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Dataset, 0, len(c.datasets))
	for _, ds := range c.datasets {
		result = append(result, ds)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Popularity != result[j].Popularity {
			return result[i].Popularity > result[j].Popularity
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Enabled returns the datasets that can be selected.
func (c *Catalog) Enabled() []*Dataset {
	var result []*Dataset
	for _, ds := range c.Datasets() {
		if ds.Enabled {
			result = append(result, ds)
		}
	}
	return result
}

// Len returns the number of registered datasets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.datasets)
}

// catalogFile is the YAML seed layout.
type catalogFile struct {
	Datasets []Dataset `yaml:"datasets"`
}

// LoadCatalog reads datasets from a YAML document into a new catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	cat := NewCatalog()
	for _, ds := range file.Datasets {
		if err := cat.Register(ds); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

var defaultCatalog = NewCatalog()

// Default returns the process-wide catalog populated by Register.
func Default() *Catalog {
	return defaultCatalog
}

// Register adds a dataset to the default catalog.
// Panics if the dataset cannot be registered; call it from init().
func Register(ds Dataset) {
	if err := defaultCatalog.Register(ds); err != nil {
		panic(err)
	}
}

// Lookup returns a dataset from the default catalog.
func Lookup(id string) (*Dataset, bool) {
	return defaultCatalog.Lookup(id)
}

// Datasets returns all datasets in the default catalog.
func Datasets() []*Dataset {
	return defaultCatalog.Datasets()
}

// Clear removes all datasets from the default catalog.
// Primarily useful for testing.
func Clear() {
	defaultCatalog.mu.Lock()
	defer defaultCatalog.mu.Unlock()
	defaultCatalog.datasets = make(map[string]*Dataset)
}
