package compare

import (
	"github.com/cespare/xxhash/v2"
)

// defaultCycle is used for models without a configured colour.
var defaultCycle = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Palette maps model names to colours. It is read-only after construction and
// safe to share.
type Palette struct {
	colors map[string]string
}

// NewPalette uses colors as given and assigns cycle colours to the remaining
// names in order, so known models keep one colour in every comparison.
func NewPalette(colors map[string]string, order []string) *Palette {
	res := make(map[string]string, len(colors)+len(order))
	for name, color := range colors {
		if color != "" {
			res[name] = color
		}
	}
	next := 0
	for _, name := range order {
		if _, ok := res[name]; ok {
			continue
		}
		res[name] = defaultCycle[next%len(defaultCycle)]
		next++
	}
	return &Palette{colors: res}
}

// ColorFor returns the model colour. Unknown models get a cycle colour picked
// by name hash, stable across runs.
func (p *Palette) ColorFor(name string) string {
	if p != nil {
		if color, ok := p.colors[name]; ok {
			return color
		}
	}
	return defaultCycle[xxhash.Sum64String(name)%uint64(len(defaultCycle))]
}
