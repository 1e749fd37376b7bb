package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"delegation-workers/internal/common/errors"
	"delegation-workers/pkg/registry"
)

// Validator checks raw job variables against the input schema registered
// for each task type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every input schema of the registry. Activities
// without a schema are accepted unchecked.
func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	if reg == nil {
		return v, nil
	}

	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("invalid input schema for %s: %w", a.TaskType, err)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

// Validate returns an INPUT_VALIDATION_FAILED error listing every schema
// violation in raw. A nil Validator accepts everything.
func (v *Validator) Validate(taskType string, raw []byte) error {
	if v == nil {
		return nil
	}
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.NewInputValidationError(fmt.Sprintf("variables are not valid JSON: %v", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	return errors.NewInputValidationError(strings.Join(msgs, "; "))
}

// ValidateVariables checks raw against a single ad-hoc schema.
func ValidateVariables(schema map[string]interface{}, raw []byte) error {
	if len(schema) == 0 {
		return nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	v := &Validator{schemas: map[string]*gojsonschema.Schema{"": compiled}}
	return v.Validate("", raw)
}
