package compare

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/model"
	"github.com/uyouii/eccentricity-posteriors/utils"
)

// Entry is one model's result within a comparison.
type Entry struct {
	Model    string                 `json:"model"`
	Color    string                 `json:"color"`
	Curve    model.DensityCurve     `json:"curve"`
	Interval model.CredibleInterval `json:"interval"`
	// Fingerprint identifies the sample set the entry was built from.
	Fingerprint uint64   `json:"fingerprint"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Label is a legend text for the entry, e.g. "TEOB: e < 0.042 (90%)".
func (e Entry) Label(symbol string, precision int32) string {
	iv := e.Interval
	round := func(v float64) float64 { return utils.FormatFloat(v, precision) }
	p := int(precision)
	switch iv.Kind {
	case model.IntervalUpperBound:
		return fmt.Sprintf("%s: %s < %.*f (%g%%)", e.Model, symbol, p, round(iv.Upper.Value), iv.Upper.Percentile)
	case model.IntervalSymmetric:
		return fmt.Sprintf("%s: %s = %.*f +%.*f -%.*f", e.Model, symbol,
			p, round(iv.Median), p, round(iv.PlusError()), p, round(iv.MinusError()))
	}
	return e.Model
}

type Failure struct {
	Model string `json:"model"`
	Err   error  `json:"-"`
}

type Skip struct {
	Model  string `json:"model"`
	Reason string `json:"reason"`
}

// Comparison collects the results of several models for one event and
// parameter. Entries keep insertion order; a renderer draws later entries on
// top of earlier ones.
type Comparison struct {
	Event     string               `json:"event"`
	Parameter string               `json:"parameter"`
	Grid      model.EvaluationGrid `json:"grid"`
	Entries   []Entry              `json:"entries"`
	Failures  []Failure            `json:"failures,omitempty"`
	Skips     []Skip               `json:"skips,omitempty"`

	palette *Palette
}

func NewComparison(event, parameter string, grid model.EvaluationGrid, palette *Palette) *Comparison {
	return &Comparison{
		Event:     event,
		Parameter: parameter,
		Grid:      grid,
		Entries:   []Entry{},
		palette:   palette,
	}
}

// Add appends entry. The entry curve must be evaluated on the comparison grid.
func (c *Comparison) Add(entry Entry) error {
	if !entry.Curve.Grid.Equal(c.Grid) {
		return errors.Wrapf(common.ErrorGridMismatch,
			"model %s: curve grid has %d points, comparison grid has %d",
			entry.Model, entry.Curve.Grid.Len(), c.Grid.Len())
	}
	if _, ok := c.Entry(entry.Model); ok {
		return errors.Wrapf(common.ErrorDuplicateModel, "model %s", entry.Model)
	}
	if entry.Color == "" {
		entry.Color = c.palette.ColorFor(entry.Model)
	}
	c.Entries = append(c.Entries, entry)
	return nil
}

func (c *Comparison) AddFailure(modelName string, err error) {
	c.Failures = append(c.Failures, Failure{Model: modelName, Err: err})
}

func (c *Comparison) AddSkip(modelName, reason string) {
	c.Skips = append(c.Skips, Skip{Model: modelName, Reason: reason})
}

func (c *Comparison) Entry(modelName string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Model == modelName {
			return e, true
		}
	}
	return Entry{}, false
}

// Models returns the model names in drawing order.
func (c *Comparison) Models() []string {
	res := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		res = append(res, e.Model)
	}
	return res
}

func (c *Comparison) IsEmpty() bool {
	return len(c.Entries) == 0
}

// DuplicateSources returns pairs of models built from identical sample sets,
// which usually means one result file was configured under two model names.
func (c *Comparison) DuplicateSources() [][2]string {
	var res [][2]string
	for i := 0; i < len(c.Entries); i++ {
		for j := i + 1; j < len(c.Entries); j++ {
			if c.Entries[i].Fingerprint == c.Entries[j].Fingerprint {
				res = append(res, [2]string{c.Entries[i].Model, c.Entries[j].Model})
			}
		}
	}
	return res
}
