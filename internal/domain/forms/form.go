// Package forms holds the canonical definition of every workspace form:
// its fields, the concepts they are stored under, and how submitted values
// are decoded and validated before an encounter is built from them.
package forms

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/icap-ethiopia/kpp/internal/domain/obs"
	"github.com/icap-ethiopia/kpp/internal/domain/payload"
	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

// ErrUnknownWorkspace is returned for workspace names no form is registered under.
var ErrUnknownWorkspace = errors.New("unknown workspace")

const (
	YesConcept = "1065AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	NoConcept  = "1066AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

// Kind is the control type of a field.
type Kind string

const (
	KindText        Kind = "text"
	KindNumber      Kind = "number"
	KindDate        Kind = "date"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindYesNo       Kind = "yesno"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var yesNoOptions = []Option{{Value: YesConcept, Label: "Yes"}, {Value: NoConcept, Label: "No"}}

// Condition makes a field required when another field holds Equals.
type Condition struct {
	Field  payload.Field `json:"field"`
	Equals string        `json:"equals"`
}

// FieldSpec describes one form control.
type FieldSpec struct {
	Name       payload.Field `json:"name"`
	Label      string        `json:"label"`
	Kind       Kind          `json:"kind"`
	Required   bool          `json:"required"`
	RequiredIf *Condition    `json:"required_if,omitempty"`
	// Rule is a validator tag applied to non-empty values, e.g. "min=0,max=150".
	Rule    string   `json:"rule,omitempty"`
	Options []Option `json:"options,omitempty"`
	// Transient fields are validated but never stored as observations.
	Transient bool `json:"transient,omitempty"`
}

// CrossCheck is a validation rule spanning several fields.
type CrossCheck func(payload.Values) FieldErrors

// Definition is a registered workspace form.
type Definition struct {
	Workspace     string             `json:"workspace"`
	Title         string             `json:"title"`
	EncounterType string             `json:"encounter_type"`
	FormUUID      string             `json:"form_uuid"`
	Fields        []FieldSpec        `json:"fields"`
	Concepts      payload.ConceptMap `json:"-"`
	checks        []CrossCheck
}

// FieldErrors maps fields to a human-readable problem.
type FieldErrors map[payload.Field]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[payload.Field(k)]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) add(f payload.Field, msg string) {
	if _, exists := fe[f]; !exists {
		fe[f] = msg
	}
}

var validate = validator.New()

// Field returns the FieldSpec for name.
func (d *Definition) Field(name payload.Field) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// StoredFields lists the fields that become observations.
func (d *Definition) StoredFields() []payload.Field {
	out := make([]payload.Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		if !f.Transient {
			out = append(out, f.Name)
		}
	}
	return out
}

// CheckConcepts verifies every stored field has a well-formed concept.
func (d *Definition) CheckConcepts() error {
	if err := d.Concepts.Validate(d.StoredFields()); err != nil {
		return fmt.Errorf("%s: %w", d.Workspace, err)
	}
	return nil
}

// Decode converts raw JSON control values into typed values: numbers become
// float64, dates become payload.DateRange in loc, multi-selects become
// []string. Keys that are not form fields pass through untouched.
func (d *Definition) Decode(raw map[string]any, loc *time.Location) (payload.Values, FieldErrors) {
	if loc == nil {
		loc = time.Local
	}
	values := make(payload.Values, len(raw))
	errs := FieldErrors{}
	for key, v := range raw {
		name := payload.Field(key)
		fs, ok := d.Field(name)
		if !ok {
			values[name] = v
			continue
		}
		decoded, err := decodeValue(fs.Kind, v, loc)
		if err != nil {
			errs.add(name, err.Error())
			continue
		}
		values[name] = decoded
	}
	if len(errs) == 0 {
		return values, nil
	}
	return values, errs
}

func decodeValue(kind Kind, v any, loc *time.Location) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case KindNumber:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case string:
			if x == "" {
				return nil, nil
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil, errors.New("must be a number")
			}
			return f, nil
		}
		return nil, errors.New("must be a number")
	case KindDate:
		return decodeDate(v, loc)
	case KindMultiSelect:
		switch x := v.(type) {
		case []string:
			return x, nil
		case []any:
			out := make([]string, 0, len(x))
			for _, e := range x {
				s, ok := e.(string)
				if !ok {
					return nil, errors.New("must be a list of strings")
				}
				out = append(out, s)
			}
			return out, nil
		case string:
			if x == "" {
				return []string{}, nil
			}
			return strings.Split(x, ","), nil
		}
		return nil, errors.New("must be a list of strings")
	default:
		switch x := v.(type) {
		case string:
			return x, nil
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(x), nil
		}
		return nil, errors.New("must be text")
	}
}

func decodeDate(v any, loc *time.Location) (any, error) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil, nil
		}
		t, err := parseDate(x, loc)
		if err != nil {
			return nil, err
		}
		return payload.DateRange{Start: t, End: t}, nil
	case map[string]any:
		s, _ := x["start"].(string)
		start, err := parseDate(s, loc)
		if err != nil {
			return nil, err
		}
		end := start
		if e, _ := x["end"].(string); e != "" {
			if end, err = parseDate(e, loc); err != nil {
				return nil, err
			}
		}
		return payload.DateRange{Start: start, End: end}, nil
	}
	return nil, errors.New("invalid date")
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	if t, err := openmrs.ParseDatetimeIn(s, loc); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
}

// Validate checks decoded values against the field specs and cross-field
// rules. It returns nil when the form can be submitted.
func (d *Definition) Validate(values payload.Values) FieldErrors {
	errs := FieldErrors{}
	for _, f := range d.Fields {
		v := values[f.Name]
		required := f.Required
		if c := f.RequiredIf; c != nil {
			if s, _ := values[c.Field].(string); s == c.Equals {
				required = true
			}
		}
		if isBlank(v) {
			if required {
				errs.add(f.Name, "is required")
			}
			continue
		}
		if msg := checkOptions(f, v); msg != "" {
			errs.add(f.Name, msg)
			continue
		}
		if f.Rule != "" {
			if err := validate.Var(v, f.Rule); err != nil {
				errs.add(f.Name, ruleMessage(err))
			}
		}
	}
	for _, check := range d.checks {
		for k, msg := range check(values) {
			errs.add(k, msg)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// isBlank reports whether a control holds no answer. Unlike payload.IsEmpty
// a zero number counts as answered.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	case payload.DateRange:
		return x.Start.IsZero()
	}
	return false
}

func checkOptions(f FieldSpec, v any) string {
	if len(f.Options) == 0 {
		return ""
	}
	allowed := func(s string) bool {
		for _, o := range f.Options {
			if o.Value == s {
				return true
			}
		}
		return false
	}
	switch x := v.(type) {
	case string:
		if !allowed(x) {
			return fmt.Sprintf("%q is not an allowed option", x)
		}
	case []string:
		for _, s := range x {
			if !allowed(s) {
				return fmt.Sprintf("%q is not an allowed option", s)
			}
		}
	}
	return ""
}

func ruleMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// Observed drops transient fields so only stored fields reach the builder.
func (d *Definition) Observed(values payload.Values) payload.Values {
	out := make(payload.Values, len(values))
	for k, v := range values {
		if spec, ok := d.Field(k); ok && spec.Transient {
			continue
		}
		out[k] = v
	}
	return out
}

// Prefill reads an existing encounter back into control values.
func (d *Definition) Prefill(enc *openmrs.Encounter) map[string]any {
	out := make(map[string]any)
	for _, f := range d.Fields {
		if f.Transient {
			continue
		}
		concept, ok := d.Concepts[f.Name]
		if !ok {
			continue
		}
		v := obs.FormValue(enc, concept, f.Kind == KindDate)
		if v == nil {
			continue
		}
		if f.Kind == KindMultiSelect {
			if s, ok := v.(string); ok {
				v = strings.Split(s, ",")
			}
		}
		out[string(f.Name)] = v
	}
	return out
}
