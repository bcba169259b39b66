// Package payload builds OpenMRS encounter writes from form field values.
package payload

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

// Namespace tags every observation produced by these forms.
const Namespace = "rfe-forms"

// Field is the logical name of a form control.
type Field string

// Path is the formFieldPath recorded for observations of f.
func (f Field) Path() string { return Namespace + "-" + string(f) }

// ConceptMap maps form fields to the concepts they are stored under.
type ConceptMap map[Field]string

// Validate checks that every field is mapped to a well-formed concept
// identifier. It reports all problems at once.
func (m ConceptMap) Validate(fields []Field) error {
	var problems []string
	for _, f := range fields {
		concept, ok := m[f]
		switch {
		case !ok || concept == "":
			problems = append(problems, fmt.Sprintf("%s: not mapped", f))
		case !IsConceptID(concept):
			problems = append(problems, fmt.Sprintf("%s: malformed concept %q", f, concept))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("concept map: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsConceptID reports whether s looks like an OpenMRS concept identifier:
// either an RFC 4122 UUID or a CIEL-style numeric code padded with 'A' to 36
// characters.
func IsConceptID(s string) bool {
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	if len(s) != 36 {
		return false
	}
	digits := strings.TrimRight(s, "A")
	if digits == "" {
		return false
	}
	_, err := strconv.ParseUint(digits, 10, 64)
	return err == nil
}

// DateRange is the value shape produced by range date pickers. Only Start is
// recorded.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Values are the current form control values keyed by field.
type Values map[Field]any

// Meta is the fixed part of an encounter write.
type Meta struct {
	Datetime      time.Time
	Providers     []openmrs.PayloadProvider
	EncounterType string
	FormUUID      string
	Location      string
	Patient       string
}

// Diagnostics reports what Build dropped.
type Diagnostics struct {
	Unmapped []Field
}

// Build turns values into an encounter payload. Empty values (nil, "", 0,
// false, empty multi-selects) produce no observation. Fields missing from
// concepts are dropped and listed in Diagnostics.Unmapped.
func Build(values Values, concepts ConceptMap, meta Meta) (*openmrs.EncounterPayload, Diagnostics) {
	fields := make([]Field, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	var diag Diagnostics
	obs := make([]openmrs.PayloadObs, 0, len(fields))
	for _, f := range fields {
		v := values[f]
		if IsEmpty(v) {
			continue
		}
		concept, ok := concepts[f]
		if !ok || concept == "" {
			diag.Unmapped = append(diag.Unmapped, f)
			continue
		}
		obs = append(obs, openmrs.PayloadObs{
			Concept:            concept,
			FormFieldNamespace: Namespace,
			FormFieldPath:      f.Path(),
			Value:              Normalize(v),
		})
	}

	providers := meta.Providers
	if providers == nil {
		providers = []openmrs.PayloadProvider{}
	}

	return &openmrs.EncounterPayload{
		EncounterDatetime:  openmrs.FormatDatetime(meta.Datetime),
		EncounterProviders: providers,
		EncounterType:      meta.EncounterType,
		Form:               openmrs.PayloadForm{UUID: meta.FormUUID},
		Location:           meta.Location,
		Patient:            meta.Patient,
		Orders:             []any{},
		Obs:                obs,
	}, diag
}

// IsEmpty reports whether v should produce no observation.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	case time.Time:
		return x.IsZero()
	case DateRange:
		return x.Start.IsZero()
	case *DateRange:
		return x == nil || x.Start.IsZero()
	default:
		return false
	}
}

// Normalize converts a control value into an observation value. Multi-selects
// are joined with commas and date ranges collapse to the calendar date of
// their start in its own time zone. Everything else passes through.
func Normalize(v any) any {
	switch x := v.(type) {
	case []string:
		return strings.Join(x, ",")
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	case DateRange:
		return x.Start.Format("2006-01-02")
	case *DateRange:
		return x.Start.Format("2006-01-02")
	default:
		return v
	}
}
