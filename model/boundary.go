package model

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
)

type BoundaryMode int

const (
	// LinearBoundary estimates on the raw parameter with a hard boundary at 0.
	LinearBoundary BoundaryMode = iota
	// LogBoundary estimates on log10 of the parameter, with samples below
	// LowerBound treated as nonexistent.
	LogBoundary
)

func (m BoundaryMode) String() string {
	switch m {
	case LinearBoundary:
		return "linear"
	case LogBoundary:
		return "log"
	}
	return "unknown"
}

func (m BoundaryMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *BoundaryMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "linear", "uniform":
		*m = LinearBoundary
	case "log", "log10":
		*m = LogBoundary
	default:
		return errors.Wrapf(common.ErrorInvalidValue, "unknown boundary mode %q", text)
	}
	return nil
}

type BoundaryConfig struct {
	Mode BoundaryMode `json:"mode" yaml:"mode"`
	// LowerBound is the physical cutoff in LogBoundary mode. It is ignored in
	// LinearBoundary mode, where the boundary is always 0.
	LowerBound float64 `json:"lower_bound,omitempty" yaml:"lower_bound"`
}

func (c BoundaryConfig) Validate() error {
	switch c.Mode {
	case LinearBoundary:
		return nil
	case LogBoundary:
		if !(c.LowerBound > 0) {
			return errors.Wrapf(common.ErrorInvalidValue,
				"log boundary needs a positive lower bound, got %v", c.LowerBound)
		}
		return nil
	}
	return errors.Wrapf(common.ErrorInvalidValue, "unknown boundary mode %d", c.Mode)
}

// PhysicalBoundary is the boundary on the untransformed parameter.
func (c BoundaryConfig) PhysicalBoundary() float64 {
	if c.Mode == LogBoundary {
		return c.LowerBound
	}
	return 0
}
