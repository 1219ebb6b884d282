// Package scenario loads attack scenarios from YAML and checks them before
// they reach the engine.
package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"breachsim/internal/domain"
)

//go:embed demo_scenario.yaml
var defaultScenarioYAML []byte

// ErrInvalidScenario wraps every validation failure returned by Load and Parse
var ErrInvalidScenario = errors.New("invalid scenario")

// File is the on-disk scenario layout
type File struct {
	Name     string    `yaml:"name"`
	Timeline *Timeline `yaml:"timeline"`
	Steps    []Step    `yaml:"steps" validate:"dive"`
}

// Timeline holds the optional run bounds. TickDelay is in seconds and capped
// at one hour.
type Timeline struct {
	MaxSteps  *int     `yaml:"max_steps" validate:"omitempty,min=1"`
	TickDelay *float64 `yaml:"tick_delay" validate:"omitempty,gte=0,lte=3600"`
}

// Step is one scenario entry. Params are interpreted according to Action.
type Step struct {
	ID     string `yaml:"id" validate:"required"`
	Action string `yaml:"action" validate:"required"`
	Params Params `yaml:"params"`
}

// Params is the union of every action's parameters. Unset values fall back
// to the domain defaults.
type Params struct {
	Target      *string  `yaml:"target"`
	From        *string  `yaml:"from"`
	To          *string  `yaml:"to"`
	Type        *string  `yaml:"type"`
	BaseSuccess *float64 `yaml:"base_success" validate:"omitempty,gte=0,lte=1"`
	DetectProb  *float64 `yaml:"detect_prob" validate:"omitempty,gte=0,lte=1"`
	DataVolume  *float64 `yaml:"data_volume" validate:"omitempty,gte=0"`
	OnSuccess   *Branch  `yaml:"on_success"`
	OnFail      *Branch  `yaml:"on_fail"`
	OnDetect    *Branch  `yaml:"on_detect"`
}

// Branch must set exactly one of Goto or End
type Branch struct {
	Goto *string `yaml:"goto"`
	End  *string `yaml:"end"`
}

// Load reads a scenario from YAML.
// If path is empty, uses the embedded demo scenario.
func Load(path string) (domain.Scenario, error) {
	var data []byte
	var err error

	if path == "" {
		data = defaultScenarioYAML
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return domain.Scenario{}, fmt.Errorf("failed to read scenario %s: %w", path, err)
		}
	}

	return Parse(data)
}

// Parse decodes, validates and converts a YAML scenario document
func Parse(data []byte) (domain.Scenario, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return domain.Scenario{}, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := Validate(&file); err != nil {
		return domain.Scenario{}, err
	}

	return file.ToDomain(), nil
}

// ToDomain converts a validated file into the engine's scenario model
func (f *File) ToDomain() domain.Scenario {
	scenario := domain.Scenario{
		Name:     f.Name,
		Steps:    make([]domain.Step, 0, len(f.Steps)),
		Timeline: domain.DefaultTimeline(),
	}

	if f.Timeline != nil {
		if f.Timeline.MaxSteps != nil {
			scenario.Timeline.MaxSteps = *f.Timeline.MaxSteps
		}
		if f.Timeline.TickDelay != nil {
			scenario.Timeline.TickDelay = time.Duration(*f.Timeline.TickDelay * float64(time.Second))
		}
	}

	for _, step := range f.Steps {
		scenario.Steps = append(scenario.Steps, domain.Step{
			ID:     step.ID,
			Action: step.Params.action(step.Action),
		})
	}

	return scenario
}

func (p Params) action(kind string) domain.Action {
	switch domain.ActionKind(kind) {
	case domain.ActionExploit:
		return domain.Exploit{
			Target:      stringOr(p.Target, domain.DefaultEndpoint),
			Technique:   stringOr(p.Type, domain.DefaultTechnique),
			BaseSuccess: floatOr(p.BaseSuccess, domain.DefaultBaseSuccess),
			OnSuccess:   p.OnSuccess.toDomain(),
			OnFail:      p.OnFail.toDomain(),
		}
	case domain.ActionMoveLateral:
		return domain.LateralMove{
			From:        stringOr(p.From, domain.DefaultEndpoint),
			To:          stringOr(p.To, domain.DefaultEndpoint),
			Technique:   stringOr(p.Type, domain.DefaultTechnique),
			BaseSuccess: floatOr(p.BaseSuccess, domain.DefaultBaseSuccess),
			OnSuccess:   p.OnSuccess.toDomain(),
			OnFail:      p.OnFail.toDomain(),
		}
	case domain.ActionExfiltrate:
		return domain.Exfiltrate{
			DetectProb: floatOr(p.DetectProb, 0),
			DataVolume: floatOr(p.DataVolume, 0),
			OnDetect:   p.OnDetect.toDomain(),
			OnSuccess:  p.OnSuccess.toDomain(),
		}
	default:
		return domain.UnknownAction{Keyword: kind}
	}
}

func (b *Branch) toDomain() domain.Branch {
	switch {
	case b == nil:
		return domain.Branch{}
	case b.Goto != nil:
		return domain.Goto(*b.Goto)
	case b.End != nil:
		return domain.End(*b.End)
	}
	return domain.Branch{}
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
