package forms

import "github.com/icap-ethiopia/kpp/internal/domain/payload"

var vitalsConcepts = payload.ConceptMap{
	"bloodPressureSystolic":  "165278AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"bloodPressureDiastolic": "165279AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"temperature":            "5088AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"pulse":                  "5087AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
}

// Vitals is the vital signs form.
func Vitals(encounterType, formUUID string) *Definition {
	return &Definition{
		Workspace:     VitalsWorkspace,
		Title:         "Vital Signs",
		EncounterType: encounterType,
		FormUUID:      formUUID,
		Concepts:      vitalsConcepts,
		Fields: []FieldSpec{
			{Name: "bloodPressureSystolic", Label: "Systolic (mmHg)", Kind: KindNumber, Rule: "min=50,max=250"},
			{Name: "bloodPressureDiastolic", Label: "Diastolic (mmHg)", Kind: KindNumber, Rule: "min=30,max=150"},
			{Name: "temperature", Label: "Temperature (°C)", Kind: KindNumber, Rule: "min=25,max=43"},
			{Name: "pulse", Label: "Pulse (beats/min)", Kind: KindNumber, Rule: "min=30,max=230"},
		},
	}
}
