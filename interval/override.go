package interval

import (
	"github.com/uyouii/eccentricity-posteriors/model"
)

type overrideKey struct {
	model     string
	parameter string
}

// Overrides is a fixed table of externally supplied statistics, for the
// cases where the computed ones are known to mislead. Build it once and treat
// it as read-only.
type Overrides struct {
	table map[overrideKey]model.Override
}

func NewOverrides() Overrides {
	return Overrides{table: map[overrideKey]model.Override{}}
}

func (o *Overrides) Set(modelName, parameter string, ov model.Override) {
	if o.table == nil {
		o.table = map[overrideKey]model.Override{}
	}
	o.table[overrideKey{model: modelName, parameter: parameter}] = ov
}

func (o Overrides) Get(modelName, parameter string) (model.Override, bool) {
	if o.table == nil {
		return model.Override{}, false
	}
	ov, ok := o.table[overrideKey{model: modelName, parameter: parameter}]
	return ov, ok
}

func (o Overrides) Len() int {
	return len(o.table)
}
