package pipeline

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/interval"
	"github.com/uyouii/eccentricity-posteriors/kde"
	"github.com/uyouii/eccentricity-posteriors/model"
	"gopkg.in/yaml.v3"
)

var configValidate = validator.New()

type GridSpacing string

const (
	LinearSpacing GridSpacing = "linear"
	LogSpacing    GridSpacing = "log"
)

// Config is everything a pipeline run needs. Nothing is read from process
// state.
type Config struct {
	Grid       GridConfig           `yaml:"grid"`
	Parameters []ParameterConfig    `yaml:"parameters" validate:"required,min=1,dive"`
	Models     []ModelConfig        `yaml:"models" validate:"dive"`
	Events     []EventConfig        `yaml:"events" validate:"dive"`
	Overrides  []OverrideConfig     `yaml:"overrides" validate:"dive"`
	Degenerate kde.DegeneratePolicy `yaml:"degenerate"`
	// Workers > 1 estimates the models of one comparison concurrently.
	Workers int `yaml:"workers" validate:"gte=0,lte=256"`
}

type GridConfig struct {
	Min     float64     `yaml:"min"`
	Max     float64     `yaml:"max" validate:"gtfield=Min"`
	Points  int         `yaml:"points" validate:"gte=2"`
	Spacing GridSpacing `yaml:"spacing" validate:"omitempty,oneof=linear log"`
}

type ParameterConfig struct {
	Name     string               `yaml:"name" validate:"required"`
	Label    string               `yaml:"label"`
	Boundary model.BoundaryConfig `yaml:"boundary"`
	// Bandwidth is required. It applies to every model and event without a
	// bandwidth of their own for this parameter, including models that only
	// show up in the input.
	Bandwidth kde.Bandwidth   `yaml:"bandwidth"`
	Interval  interval.Config `yaml:"interval"`
}

// BandwidthTable maps a parameter name to a bandwidth. Bandwidths live in
// the parameter's estimation space, so a linear factor never leaks into a
// log parameter.
type BandwidthTable map[string]kde.Bandwidth

type ModelConfig struct {
	Name      string         `yaml:"name" validate:"required"`
	Color     string         `yaml:"color"`
	Bandwidth BandwidthTable `yaml:"bandwidth"`
}

// EventConfig holds per-event settings that win over model and parameter
// settings, e.g. a symmetric interval for the one event with a clear
// eccentricity measurement.
type EventConfig struct {
	Name         string             `yaml:"name" validate:"required"`
	Bandwidth    BandwidthTable     `yaml:"bandwidth"`
	IntervalKind model.IntervalKind `yaml:"interval_kind"`
}

type OverrideConfig struct {
	Model          string `yaml:"model" validate:"required"`
	Parameter      string `yaml:"parameter" validate:"required"`
	model.Override `yaml:",inline"`
}

func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Min:     0,
			Max:     0.2,
			Points:  1000,
			Spacing: LinearSpacing,
		},
		Degenerate: kde.DegenerateSpike,
		Workers:    1,
	}
}

// LoadConfig reads a YAML config file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return errors.Wrapf(common.ErrorInvalidValue, "%v", err)
	}
	if _, err := c.BuildGrid(); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, p := range c.Parameters {
		if seen[p.Name] {
			return errors.Wrapf(common.ErrorInvalidValue, "parameter %s configured twice", p.Name)
		}
		seen[p.Name] = true

		if err := p.Boundary.Validate(); err != nil {
			return errors.Wrapf(err, "parameter %s", p.Name)
		}
		if err := p.Bandwidth.Validate(); err != nil {
			return errors.Wrapf(err, "parameter %s needs a bandwidth for unlisted models and events", p.Name)
		}
		if err := p.Interval.WithDefaults().Validate(); err != nil {
			return errors.Wrapf(err, "parameter %s", p.Name)
		}
		if p.Boundary.Mode == model.LogBoundary && c.Grid.Max < p.Boundary.LowerBound {
			return errors.Wrapf(common.ErrorInvalidValue,
				"parameter %s: grid ends below the lower bound %v", p.Name, p.Boundary.LowerBound)
		}
	}

	models := map[string]bool{}
	for _, m := range c.Models {
		if models[m.Name] {
			return errors.Wrapf(common.ErrorInvalidValue, "model %s configured twice", m.Name)
		}
		models[m.Name] = true
		if err := m.Bandwidth.validate(seen); err != nil {
			return errors.Wrapf(err, "model %s", m.Name)
		}
	}

	events := map[string]bool{}
	for _, e := range c.Events {
		if events[e.Name] {
			return errors.Wrapf(common.ErrorInvalidValue, "event %s configured twice", e.Name)
		}
		events[e.Name] = true
		if err := e.Bandwidth.validate(seen); err != nil {
			return errors.Wrapf(err, "event %s", e.Name)
		}
	}

	for _, o := range c.Overrides {
		if !seen[o.Parameter] {
			return errors.Wrapf(common.ErrorInvalidValue, "override for unknown parameter %s", o.Parameter)
		}
		if o.Kind != model.IntervalUpperBound && o.Kind != model.IntervalSymmetric {
			return errors.Wrapf(common.ErrorInvalidValue, "override %s/%s has no kind", o.Model, o.Parameter)
		}
	}
	return nil
}

// BuildGrid constructs the evaluation grid shared by every comparison.
func (c Config) BuildGrid() (model.EvaluationGrid, error) {
	switch GridSpacing(strings.ToLower(string(c.Grid.Spacing))) {
	case LogSpacing:
		return model.Logspace(c.Grid.Min, c.Grid.Max, c.Grid.Points)
	case "", LinearSpacing:
		return model.Linspace(c.Grid.Min, c.Grid.Max, c.Grid.Points)
	}
	return model.EvaluationGrid{}, errors.Wrapf(common.ErrorInvalidValue, "unknown grid spacing %q", c.Grid.Spacing)
}

func (c Config) parameter(name string) (ParameterConfig, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterConfig{}, false
}

func (c Config) model(name string) (ModelConfig, bool) {
	for _, m := range c.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelConfig{}, false
}

func (c Config) event(name string) (EventConfig, bool) {
	for _, e := range c.Events {
		if e.Name == name {
			return e, true
		}
	}
	return EventConfig{}, false
}

func (t BandwidthTable) validate(parameters map[string]bool) error {
	for name, bw := range t {
		if !parameters[name] {
			return errors.Wrapf(common.ErrorInvalidValue, "bandwidth for unknown parameter %s", name)
		}
		if err := bw.Validate(); err != nil {
			return errors.Wrapf(err, "parameter %s", name)
		}
	}
	return nil
}

// bandwidthFor resolves event, then model, then parameter bandwidth.
// Validate guarantees the parameter level is set.
func (c Config) bandwidthFor(event, modelName string, p ParameterConfig) kde.Bandwidth {
	if e, ok := c.event(event); ok {
		if bw, ok := e.Bandwidth[p.Name]; ok {
			return bw
		}
	}
	if m, ok := c.model(modelName); ok {
		if bw, ok := m.Bandwidth[p.Name]; ok {
			return bw
		}
	}
	return p.Bandwidth
}

func (c Config) intervalFor(event string, p ParameterConfig) interval.Config {
	res := p.Interval
	if e, ok := c.event(event); ok && e.IntervalKind != model.IntervalUnset {
		res.Kind = e.IntervalKind
	}
	return res.WithDefaults()
}

func (c Config) overrides() interval.Overrides {
	res := interval.NewOverrides()
	for _, o := range c.Overrides {
		res.Set(o.Model, o.Parameter, o.Override)
	}
	return res
}

func (c Config) palette() map[string]string {
	res := map[string]string{}
	for _, m := range c.Models {
		if m.Color != "" {
			res[m.Name] = m.Color
		}
	}
	return res
}

func (c Config) modelNames() []string {
	res := make([]string, 0, len(c.Models))
	for _, m := range c.Models {
		res = append(res, m.Name)
	}
	return res
}
