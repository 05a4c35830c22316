package triple

import "trisect/internal/catalog"

// Generator walks the catalog's Cartesian product lazily, one assembled
// triple per call. Order is fixed and reproducible: architecture varies
// slowest, environment fastest, each axis in catalog order. A Generator is
// a pure view over the catalog; Reset rewinds it to the first triple.
type Generator struct {
	axes [4][]string
	idx  [4]int
	done bool
}

// NewGenerator returns a generator positioned at the first triple.
func NewGenerator(c *catalog.Catalog) *Generator {
	return &Generator{axes: [4][]string{
		c.Architectures,
		c.Vendors,
		c.OperatingSystems,
		c.Environments,
	}}
}

// Next returns the next triple in sequence. The second result is false once
// the product is exhausted.
func (g *Generator) Next() (string, bool) {
	if g.done {
		return "", false
	}

	t := Assemble(
		g.axes[0][g.idx[0]],
		g.axes[1][g.idx[1]],
		g.axes[2][g.idx[2]],
		g.axes[3][g.idx[3]],
	)

	// Odometer increment, rightmost axis fastest.
	for i := 3; i >= 0; i-- {
		g.idx[i]++
		if g.idx[i] < len(g.axes[i]) {
			return t, true
		}
		g.idx[i] = 0
	}
	g.done = true
	return t, true
}

// Reset rewinds the generator to the first triple.
func (g *Generator) Reset() {
	g.idx = [4]int{}
	g.done = false
}

// Remaining returns the number of triples not yet produced.
func (g *Generator) Remaining() int {
	if g.done {
		return 0
	}
	total := 0
	for i := 0; i < 4; i++ {
		total = total*len(g.axes[i]) + g.idx[i]
	}
	product := 1
	for i := 0; i < 4; i++ {
		product *= len(g.axes[i])
	}
	return product - total
}
