// Package validation checks decoded request structs against JSON schemas
// reflected from their struct tags.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUnknownType is returned when validating a type no schema was compiled for.
var ErrUnknownType = errors.New("no schema registered for type")

// Violation is a single failed constraint.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// Error reports every constraint a request failed.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	return "invalid request: " + strings.Join(e.Messages(), "; ")
}

// Messages returns one line per violation.
func (e *Error) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return msgs
}

// Validator holds compiled schemas keyed by struct type.
type Validator struct {
	schemas map[reflect.Type]*jschema.Schema
	printer *message.Printer
}

// New compiles a schema for the type of each sample.
func New(samples ...any) (*Validator, error) {
	v := &Validator{
		schemas: make(map[reflect.Type]*jschema.Schema, len(samples)),
		printer: message.NewPrinter(language.English),
	}

	r := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}

	c := jschema.NewCompiler()
	c.AssertFormat()

	for _, sample := range samples {
		typ := indirect(reflect.TypeOf(sample))
		url := typ.Name() + ".json"

		schemaBytes, err := json.Marshal(r.Reflect(sample))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s schema: %w", typ.Name(), err)
		}
		doc, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s schema: %w", typ.Name(), err)
		}
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("failed to add %s schema resource: %w", typ.Name(), err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", typ.Name(), err)
		}
		v.schemas[typ] = sch
	}

	return v, nil
}

// Validate checks value against its type's schema. Constraint failures are *Error.
func (v *Validator) Validate(value any) error {
	typ := indirect(reflect.TypeOf(value))
	sch, ok := v.schemas[typ]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownType, typ)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to parse value: %w", err)
	}

	err = sch.Validate(inst)
	if err == nil {
		return nil
	}

	var verr *jschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	out := &Error{}
	v.collect(verr, &out.Violations)
	sort.SliceStable(out.Violations, func(i, j int) bool {
		return out.Violations[i].Field < out.Violations[j].Field
	})
	return out
}

// collect flattens the cause tree into its leaves.
func (v *Validator) collect(e *jschema.ValidationError, dst *[]Violation) {
	if len(e.Causes) == 0 {
		*dst = append(*dst, Violation{
			Field:   strings.Join(e.InstanceLocation, "."),
			Message: e.ErrorKind.LocalizedString(v.printer),
		})
		return
	}
	for _, cause := range e.Causes {
		v.collect(cause, dst)
	}
}

func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
