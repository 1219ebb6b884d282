package scenario

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(yamlFieldName)
}

// Validate checks a decoded scenario file and reports every problem found,
// wrapped in ErrInvalidScenario.
func Validate(f *File) error {
	if f == nil {
		return fmt.Errorf("%w: scenario cannot be nil", ErrInvalidScenario)
	}

	var problems []error
	if err := validate.Struct(f); err != nil {
		problems = append(problems, formatValidationErrors(err)...)
	}

	seen := make(map[string]int, len(f.Steps))
	for i, step := range f.Steps {
		if step.ID != "" {
			if first, dup := seen[step.ID]; dup {
				problems = append(problems, fmt.Errorf("steps[%d].id: duplicate step id %q (first at steps[%d])", i, step.ID, first))
			} else {
				seen[step.ID] = i
			}
		}

		branches := []struct {
			name   string
			branch *Branch
		}{
			{"on_success", step.Params.OnSuccess},
			{"on_fail", step.Params.OnFail},
			{"on_detect", step.Params.OnDetect},
		}
		for _, b := range branches {
			if err := b.branch.check(); err != nil {
				problems = append(problems, fmt.Errorf("steps[%d].params.%s: %w", i, b.name, err))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(problems...))
}

func (b *Branch) check() error {
	if b == nil {
		return nil
	}
	switch {
	case b.Goto != nil && b.End != nil:
		return errors.New("branch must set only one of goto or end")
	case b.Goto == nil && b.End == nil:
		return errors.New("branch must set goto or end")
	case b.Goto != nil && *b.Goto == "":
		return errors.New("goto label cannot be empty")
	case b.End != nil && *b.End == "":
		return errors.New("end label cannot be empty")
	}
	return nil
}

func formatValidationErrors(err error) []error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []error{err}
	}

	problems := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := fieldPath(e.Namespace())
		param := e.Param()

		switch e.Tag() {
		case "required":
			problems = append(problems, fmt.Errorf("%s: field is required", field))
		case "min", "gte":
			problems = append(problems, fmt.Errorf("%s: must be at least %s", field, param))
		case "max", "lte":
			problems = append(problems, fmt.Errorf("%s: must not exceed %s", field, param))
		default:
			problems = append(problems, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return problems
}

// fieldPath drops the root type name from a validator namespace
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func yamlFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
