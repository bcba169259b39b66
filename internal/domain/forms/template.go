package forms

import "github.com/icap-ethiopia/kpp/internal/domain/payload"

var templateConcepts = payload.ConceptMap{
	"sampleTextInput": "160632AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"sampleNumber":    "5089AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"sampleDate":      "5096AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"sampleDropDown":  "161011AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
}

// Template is the starter form new extensions copy from.
func Template(encounterType, formUUID string) *Definition {
	return &Definition{
		Workspace:     TemplateWorkspace,
		Title:         "Template-esm",
		EncounterType: encounterType,
		FormUUID:      formUUID,
		Concepts:      templateConcepts,
		Fields: []FieldSpec{
			{Name: "sampleTextInput", Label: "Sample text input", Kind: KindText, Required: true},
			{Name: "sampleNumber", Label: "Sample number", Kind: KindNumber, Rule: "min=0"},
			{Name: "sampleDate", Label: "Sample date", Kind: KindDate},
			{Name: "sampleDropDown", Label: "Sample drop down", Kind: KindSelect, Options: []Option{
				{Value: "option-1", Label: "Option 1"},
				{Value: "option-2", Label: "Option 2"},
				{Value: "option-3", Label: "Option 3"},
			}},
		},
	}
}
