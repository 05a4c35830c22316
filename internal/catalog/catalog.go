// Package catalog holds the axis value tables the triple generator sweeps
// over. The default catalog is the LLVM 15.0.0 triple vocabulary, embedded
// at build time; an alternative catalog can be loaded from a YAML file.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed axes.yaml
var defaultAxes []byte

// Absent is the axis value meaning "this axis contributes nothing to the
// assembled triple".
const Absent = ""

// Axis is one independent dimension of the triple space with its ordered
// value list.
type Axis struct {
	Name   string
	Values []string
}

// Catalog is the full four-axis value table. Axis order is fixed:
// architecture, vendor, operating system, environment.
type Catalog struct {
	Architectures    []string `yaml:"architectures"`
	Vendors          []string `yaml:"vendors"`
	OperatingSystems []string `yaml:"operating_systems"`
	Environments     []string `yaml:"environments"`
}

// Default returns the embedded LLVM 15.0.0 catalog.
func Default() (*Catalog, error) {
	return parse(defaultAxes)
}

// LoadFromPath reads a catalog from a YAML file.
func LoadFromPath(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Axes returns the four axes in assembly order.
func (c *Catalog) Axes() []Axis {
	return []Axis{
		{Name: "architecture", Values: c.Architectures},
		{Name: "vendor", Values: c.Vendors},
		{Name: "os", Values: c.OperatingSystems},
		{Name: "environment", Values: c.Environments},
	}
}

// Product returns the total number of triples the catalog spans.
func (c *Catalog) Product() int {
	n := 1
	for _, axis := range c.Axes() {
		n *= len(axis.Values)
	}
	return n
}

func (c *Catalog) validate() error {
	for _, axis := range c.Axes() {
		if len(axis.Values) == 0 {
			return fmt.Errorf("axis %s has no values", axis.Name)
		}
		seen := make(map[string]bool, len(axis.Values))
		for _, v := range axis.Values {
			if seen[v] {
				return fmt.Errorf("axis %s: duplicate value %q", axis.Name, v)
			}
			seen[v] = true
		}
	}
	return nil
}
