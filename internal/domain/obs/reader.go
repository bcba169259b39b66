// Package obs turns the observations on an encounter into display values.
//
// Reads never fail: a missing encounter, an unmatched concept or an
// unparsable date all degrade to NoValue so one bad observation cannot blank
// a whole table.
package obs

import (
	"strconv"
	"strings"
	"time"

	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

const (
	// NoValue is rendered for cells with no matching observation.
	NoValue = "--"

	// TrueConceptUUID is the coded answer meaning "Yes" on boolean concepts.
	TrueConceptUUID = "cf82933b-3f3f-45e7-a5ab-5d31aaee3da3"

	// WideDateLayout renders dates as "05 — Mar — 2024".
	WideDateLayout = "02 — Jan — 2006"

	obsDatetimeLayout = "2006-01-02T15:04:05"
	formDateLayout    = "2006-01-02"
)

// Display is a display-ready observation value.
type Display struct {
	Text  string
	Raw   any
	Found bool
}

func (d Display) String() string { return d.Text }

type options struct {
	isDate    bool
	trueFalse bool
	loc       *time.Location
}

// Option tunes how GetValue renders the matched observation.
type Option func(*options)

// AsDate renders the value with WideDateLayout.
func AsDate() Option { return func(o *options) { o.isDate = true } }

// AsTrueFalse renders "Yes" when the value is TrueConceptUUID and "No"
// otherwise, including when nothing matched.
func AsTrueFalse() Option { return func(o *options) { o.trueFalse = true } }

// WithLocation converts dates into loc before formatting.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

// ParseObsDatetime parses an obsDatetime, ignoring everything from the first
// "." on. Unparsable input yields the zero time, which sorts earliest.
func ParseObsDatetime(s string) time.Time {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(obsDatetimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FindObs returns the authoritative observation for concept: the only match,
// or the one with the latest obsDatetime when the field was recorded more
// than once. Ties keep the first in encounter order.
func FindObs(enc *openmrs.Encounter, concept string) *openmrs.Obs {
	if enc == nil {
		return nil
	}
	var (
		best   *openmrs.Obs
		bestAt time.Time
	)
	for i := range enc.Obs {
		o := &enc.Obs[i]
		if o.Concept.UUID != concept {
			continue
		}
		at := ParseObsDatetime(o.ObsDatetime)
		if best == nil || at.After(bestAt) {
			best, bestAt = o, at
		}
	}
	return best
}

// GetValue reads concept from enc and renders it for display.
func GetValue(enc *openmrs.Encounter, concept string, opts ...Option) Display {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	match := FindObs(enc, concept)

	if o.trueFalse {
		d := Display{Text: "No", Raw: false, Found: match != nil}
		if match != nil && match.Value.IsCoded() && match.Value.Coded.UUID == TrueConceptUUID {
			d.Text, d.Raw = "Yes", true
		}
		return d
	}

	if match == nil || match.Value == nil {
		return Display{Text: NoValue}
	}

	if o.isDate {
		t, ok := valueTime(match.Value, o.loc)
		if !ok {
			return Display{Text: NoValue}
		}
		if o.loc != nil {
			t = t.In(o.loc)
		}
		return Display{Text: t.Format(WideDateLayout), Raw: t, Found: true}
	}

	if match.Value.IsCoded() {
		return Display{Text: ConceptLabel(match.Value.Coded), Raw: match.Value.Coded.UUID, Found: true}
	}
	return Display{Text: scalarText(match.Value.Scalar), Raw: match.Value.Scalar, Found: true}
}

// FormValue returns the value a form control should be pre-filled with:
// the coded answer's UUID, a YYYY-MM-DD date, or the raw scalar. It returns
// nil when nothing usable is recorded.
func FormValue(enc *openmrs.Encounter, concept string, isDate bool) any {
	match := FindObs(enc, concept)
	if match == nil || match.Value == nil {
		return nil
	}
	if match.Value.IsCoded() {
		return match.Value.Coded.UUID
	}
	if isDate {
		t, ok := valueTime(match.Value, nil)
		if !ok {
			return nil
		}
		return t.Format(formDateLayout)
	}
	return match.Value.Scalar
}

// ConceptLabel prefers the SHORT name of a concept, then its primary name.
func ConceptLabel(c *openmrs.Concept) string {
	if c == nil {
		return NoValue
	}
	for _, n := range c.Names {
		if n.ConceptNameType == "SHORT" && n.Name != "" {
			return n.Name
		}
	}
	if c.Name != nil && c.Name.Name != "" {
		return c.Name.Name
	}
	if c.Display != "" {
		return c.Display
	}
	return NoValue
}

// valueTime reads a date observation. Dates stored without an offset are
// wall dates and are read in loc so they never shift a day.
func valueTime(v *openmrs.ObsValue, loc *time.Location) (time.Time, bool) {
	s, ok := v.Scalar.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := openmrs.ParseDatetimeIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return NoValue
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return NoValue
	}
}
