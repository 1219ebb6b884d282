// Package topology loads the network model (nodes, edges and controls) that
// scenarios are evaluated against.
package topology

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"breachsim/internal/domain"
)

//go:embed demo_topology.yaml
var defaultTopologyYAML []byte

// ErrInvalidTopology wraps every validation failure returned by Load and Parse
var ErrInvalidTopology = errors.New("invalid topology")

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// File is the on-disk topology layout
type File struct {
	Controls map[string]Control `yaml:"controls" validate:"dive"`
	Nodes    []Node             `yaml:"nodes" validate:"dive"`
	Edges    []Edge             `yaml:"edges" validate:"dive"`
}

// Control maps technique kinds to an effectiveness in [0,1]
type Control struct {
	Effectiveness map[string]float64 `yaml:"effectiveness" validate:"dive,keys,required,endkeys,gte=0,lte=1"`
}

// Node is one asset and the controls protecting it
type Node struct {
	ID       string         `yaml:"id" validate:"required"`
	Controls []string       `yaml:"controls" validate:"dive,required"`
	Attrs    map[string]any `yaml:"attrs"`
}

// Edge declares reachability between two nodes
type Edge struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}

// Load reads a topology from YAML.
// If path is empty, uses the embedded demo topology.
func Load(path string) (domain.Topology, error) {
	var data []byte
	var err error

	if path == "" {
		data = defaultTopologyYAML
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return domain.Topology{}, fmt.Errorf("failed to read topology %s: %w", path, err)
		}
	}

	return Parse(data)
}

// Parse decodes, validates and converts a YAML topology document
func Parse(data []byte) (domain.Topology, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return domain.Topology{}, fmt.Errorf("failed to parse topology: %w", err)
	}

	if err := Validate(&file); err != nil {
		return domain.Topology{}, err
	}

	return file.ToDomain(), nil
}

// Validate checks a decoded topology file and reports every problem found,
// wrapped in ErrInvalidTopology. Control references are not checked here;
// an unknown control simply contributes nothing (see Lint).
func Validate(f *File) error {
	if f == nil {
		return fmt.Errorf("%w: topology cannot be nil", ErrInvalidTopology)
	}

	var problems []error
	if err := validate.Struct(f); err != nil {
		problems = append(problems, formatValidationErrors(err)...)
	}

	declared := make(map[string]int, len(f.Nodes))
	for i, n := range f.Nodes {
		if n.ID == "" {
			continue
		}
		if first, dup := declared[n.ID]; dup {
			problems = append(problems, fmt.Errorf("nodes[%d].id: duplicate node id %q (first at nodes[%d])", i, n.ID, first))
			continue
		}
		declared[n.ID] = i
	}

	for i, e := range f.Edges {
		if _, ok := declared[e.From]; e.From != "" && !ok {
			problems = append(problems, fmt.Errorf("edges[%d].from: unknown node %q", i, e.From))
		}
		if _, ok := declared[e.To]; e.To != "" && !ok {
			problems = append(problems, fmt.Errorf("edges[%d].to: unknown node %q", i, e.To))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidTopology, errors.Join(problems...))
}

// ToDomain converts a validated file into the engine's topology model
func (f *File) ToDomain() domain.Topology {
	nodes := make([]domain.Node, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		nodes = append(nodes, domain.Node{ID: n.ID, Controls: n.Controls, Attrs: n.Attrs})
	}

	edges := make([]domain.Edge, 0, len(f.Edges))
	for _, e := range f.Edges {
		edges = append(edges, domain.Edge{From: e.From, To: e.To})
	}

	ids := make([]string, 0, len(f.Controls))
	for id := range f.Controls {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	controls := make([]domain.Control, 0, len(ids))
	for _, id := range ids {
		controls = append(controls, domain.Control{ID: id, Effectiveness: f.Controls[id].Effectiveness})
	}

	return domain.NewTopology(nodes, edges, controls)
}

// Lint reports node controls that name no declared control
func Lint(t domain.Topology) []string {
	ids := make([]string, 0, len(t.Nodes))
	for id := range t.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var warnings []string
	for _, id := range ids {
		for _, c := range t.Nodes[id].Controls {
			if _, ok := t.Control(c); !ok {
				warnings = append(warnings, fmt.Sprintf("node %s: unknown control %q contributes no protection", id, c))
			}
		}
	}
	return warnings
}

func formatValidationErrors(err error) []error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []error{err}
	}

	problems := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}

		switch e.Tag() {
		case "required":
			problems = append(problems, fmt.Errorf("%s: field is required", field))
		case "gte":
			problems = append(problems, fmt.Errorf("%s: must be at least %s", field, e.Param()))
		case "lte":
			problems = append(problems, fmt.Errorf("%s: must not exceed %s", field, e.Param()))
		default:
			problems = append(problems, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return problems
}
