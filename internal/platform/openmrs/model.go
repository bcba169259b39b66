package openmrs

import (
	"bytes"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// EncounterRepresentation is the custom REST representation requested for
// encounter reads. It pulls in the location, patient and providers plus each
// observation with its concept and, for coded answers, every concept name.
const EncounterRepresentation = "custom:(uuid,encounterDatetime,encounterType,location:(uuid,name)," +
	"patient:(uuid,display),encounterProviders:(uuid,provider:(uuid,name))," +
	"obs:(uuid,obsDatetime,voided,groupMembers,formFieldNamespace,formFieldPath,concept:(uuid,name:(uuid,name)),value:(uuid,name:(uuid,name)," +
	"names:(uuid,conceptNameType,name))))"

// Ref is the short representation OpenMRS uses for nested resources.
type Ref struct {
	UUID    string `json:"uuid"`
	Display string `json:"display,omitempty"`
	Name    string `json:"name,omitempty"`
}

// ConceptName is one localized name of a concept.
type ConceptName struct {
	UUID            string `json:"uuid,omitempty"`
	Name            string `json:"name"`
	ConceptNameType string `json:"conceptNameType,omitempty"`
}

// Concept is a coded vocabulary entry as returned inside an observation.
type Concept struct {
	UUID    string        `json:"uuid"`
	Display string        `json:"display,omitempty"`
	Name    *ConceptName  `json:"name,omitempty"`
	Names   []ConceptName `json:"names,omitempty"`
}

// ObsValue is the polymorphic value of an observation: either a scalar
// (string, number, boolean) or a coded concept reference.
type ObsValue struct {
	Scalar any
	Coded  *Concept
}

// ScalarValue wraps a scalar observation value.
func ScalarValue(v any) *ObsValue { return &ObsValue{Scalar: v} }

// CodedValue wraps a coded observation value.
func CodedValue(c Concept) *ObsValue { return &ObsValue{Coded: &c} }

// IsCoded reports whether the value references a concept.
func (v *ObsValue) IsCoded() bool { return v != nil && v.Coded != nil }

func (v *ObsValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var c Concept
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return err
		}
		v.Coded = &c
		v.Scalar = nil
		return nil
	}
	var s any
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	v.Scalar = s
	v.Coded = nil
	return nil
}

func (v ObsValue) MarshalJSON() ([]byte, error) {
	if v.Coded != nil {
		return json.Marshal(v.Coded)
	}
	return json.Marshal(v.Scalar)
}

// Obs is one recorded data point on an encounter.
type Obs struct {
	UUID               string    `json:"uuid,omitempty"`
	ObsDatetime        string    `json:"obsDatetime,omitempty"`
	Voided             bool      `json:"voided,omitempty"`
	Concept            Concept   `json:"concept"`
	Value              *ObsValue `json:"value,omitempty"`
	GroupMembers       []Obs     `json:"groupMembers,omitempty"`
	FormFieldNamespace string    `json:"formFieldNamespace,omitempty"`
	FormFieldPath      string    `json:"formFieldPath,omitempty"`
}

// EncounterProvider links a provider to an encounter under a role.
type EncounterProvider struct {
	UUID          string `json:"uuid,omitempty"`
	Provider      Ref    `json:"provider"`
	EncounterRole *Ref   `json:"encounterRole,omitempty"`
}

// Encounter is a clinical event as returned by the encounter resource.
type Encounter struct {
	UUID               string              `json:"uuid"`
	Display            string              `json:"display,omitempty"`
	EncounterDatetime  string              `json:"encounterDatetime"`
	EncounterType      *Ref                `json:"encounterType,omitempty"`
	Patient            *Ref                `json:"patient,omitempty"`
	Location           *Ref                `json:"location,omitempty"`
	Form               *Ref                `json:"form,omitempty"`
	EncounterProviders []EncounterProvider `json:"encounterProviders,omitempty"`
	Obs                []Obs               `json:"obs,omitempty"`
}

// Datetime parses EncounterDatetime. The zero time is returned for values
// the host sent in an unexpected layout.
func (e *Encounter) Datetime() time.Time {
	if e == nil {
		return time.Time{}
	}
	t, _ := ParseDatetime(e.EncounterDatetime)
	return t
}

// datetimeLayouts are the timestamp shapes OpenMRS emits and accepts.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDatetime parses any of the timestamp layouts OpenMRS uses. Values
// without an offset are read as UTC.
func ParseDatetime(s string) (time.Time, error) {
	return ParseDatetimeIn(s, time.UTC)
}

// ParseDatetimeIn is ParseDatetime with values that carry no offset, such as
// a bare YYYY-MM-DD, read as wall time in loc.
func ParseDatetimeIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	var firstErr error
	for _, layout := range datetimeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// FormatDatetime renders t in the layout OpenMRS expects on writes.
func FormatDatetime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000-0700")
}

// Tag is a location tag.
type Tag struct {
	UUID    string `json:"uuid"`
	Display string `json:"display"`
}

// Location is a clinical site.
type Location struct {
	UUID    string `json:"uuid"`
	Display string `json:"display"`
	Name    string `json:"name,omitempty"`
	Tags    []Tag  `json:"tags,omitempty"`
}

// HasTag reports whether the location carries a tag with the given display.
func (l Location) HasTag(display string) bool {
	for _, t := range l.Tags {
		if t.Display == display {
			return true
		}
	}
	return false
}

// PersonName is a structured person name.
type PersonName struct {
	GivenName  string `json:"givenName"`
	MiddleName string `json:"middleName,omitempty"`
	FamilyName string `json:"familyName"`
}

// Full joins the non-empty name parts with single spaces.
func (n *PersonName) Full() string {
	if n == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{n.GivenName, n.MiddleName, n.FamilyName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type Person struct {
	UUID          string      `json:"uuid"`
	Display       string      `json:"display,omitempty"`
	Gender        string      `json:"gender,omitempty"`
	Age           int         `json:"age,omitempty"`
	Birthdate     string      `json:"birthdate,omitempty"`
	PreferredName *PersonName `json:"preferredName,omitempty"`
}

type PatientIdentifier struct {
	UUID           string `json:"uuid,omitempty"`
	Identifier     string `json:"identifier"`
	IdentifierType Ref    `json:"identifierType"`
}

// Patient is the full patient record.
type Patient struct {
	UUID        string              `json:"uuid"`
	Display     string              `json:"display,omitempty"`
	Person      *Person             `json:"person,omitempty"`
	Identifiers []PatientIdentifier `json:"identifiers,omitempty"`
}

// Identifier returns the first identifier whose type display matches.
func (p *Patient) Identifier(typeDisplay string) string {
	if p == nil {
		return ""
	}
	for _, id := range p.Identifiers {
		if id.IdentifierType.Display == typeDisplay {
			return id.Identifier
		}
	}
	return ""
}

// Name returns the preferred name of the patient.
func (p *Patient) Name() string {
	if p == nil || p.Person == nil {
		return ""
	}
	return p.Person.PreferredName.Full()
}

// PayloadObs is one observation in an encounter write.
type PayloadObs struct {
	Concept            string `json:"concept"`
	FormFieldNamespace string `json:"formFieldNamespace"`
	FormFieldPath      string `json:"formFieldPath"`
	Value              any    `json:"value"`
}

// PayloadProvider is a provider entry in an encounter write.
type PayloadProvider struct {
	Provider      string `json:"provider"`
	EncounterRole string `json:"encounterRole"`
}

// PayloadForm references the source form of an encounter write.
type PayloadForm struct {
	UUID string `json:"uuid"`
}

// EncounterPayload is the body posted to create or replace an encounter.
type EncounterPayload struct {
	EncounterDatetime  string            `json:"encounterDatetime"`
	EncounterProviders []PayloadProvider `json:"encounterProviders"`
	EncounterType      string            `json:"encounterType"`
	Form               PayloadForm       `json:"form"`
	Location           string            `json:"location"`
	Patient            string            `json:"patient"`
	Orders             []any             `json:"orders"`
	Obs                []PayloadObs      `json:"obs"`
}

// listResponse is the envelope of every REST list endpoint.
type listResponse[T any] struct {
	Results []T `json:"results"`
}

// errorResponse is the OpenMRS REST error envelope.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
}
