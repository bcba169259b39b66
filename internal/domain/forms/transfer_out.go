package forms

import (
	"github.com/icap-ethiopia/kpp/internal/domain/obs"
	"github.com/icap-ethiopia/kpp/internal/domain/payload"
	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

const (
	FieldTransferredFrom payload.Field = "transferredFrom"
	FieldTransferredTo   payload.Field = "transferredTo"
	FieldName            payload.Field = "name"
	FieldMRN             payload.Field = "mrn"
	FieldArtStarted      payload.Field = "artStarted"
	FieldRegimen         payload.Field = "originalFirstLineRegimenDose"
	FieldDateOfTransfer  payload.Field = "dateOfTransfer"
)

// RegimenConcept is the ART regimen question recorded on follow-up visits.
const RegimenConcept = "162240AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// MRNIdentifierType is the identifier type display holding the medical record number.
const MRNIdentifierType = "MRN"

var transferOutConcepts = payload.ConceptMap{
	FieldTransferredFrom: "160535AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	FieldTransferredTo:   "159495AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	FieldName:            "160750AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	FieldMRN:             "162763AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	FieldArtStarted:      "160119AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	FieldRegimen:         RegimenConcept,
	FieldDateOfTransfer:  "160649AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
}

var regimenOptions = []Option{
	{Value: "2798d3bc-2e0a-459c-b249-9516b380a69e", Label: "1a30"},
	{Value: "3495d89f-4d46-44d8-b1c9-d101bc9f15d4", Label: "1a40"},
	{Value: "a9da3e97-3916-4834-854c-6bcbc5142aca", Label: "1c"},
	{Value: "b5951dd9-6bb2-4b63-af20-0707500108ea", Label: "1d"},
}

// TransferOut is the form recording a patient's transfer to another facility.
func TransferOut(encounterType, formUUID string) *Definition {
	return &Definition{
		Workspace:     TransferOutWorkspace,
		Title:         "Transfer Out",
		EncounterType: encounterType,
		FormUUID:      formUUID,
		Concepts:      transferOutConcepts,
		Fields: []FieldSpec{
			{Name: FieldTransferredFrom, Label: "Transferred from", Kind: KindText, Required: true},
			{Name: FieldTransferredTo, Label: "Transferred to", Kind: KindText, Required: true},
			{Name: FieldName, Label: "Name", Kind: KindText, Required: true},
			{Name: FieldMRN, Label: "MRN", Kind: KindText, Required: true},
			{Name: FieldArtStarted, Label: "ART Started", Kind: KindYesNo, Required: true, Options: yesNoOptions},
			{Name: FieldRegimen, Label: "Original first line regimen dose", Kind: KindSelect, Options: regimenOptions},
			{Name: FieldDateOfTransfer, Label: "Date of Transfer", Kind: KindDate, Required: true},
		},
	}
}

// TransferOutPrefill derives the initial values of a new transfer-out form
// from the patient record, the facility and the patient's follow-up visits.
// The regimen comes from the first follow-up that recorded one.
func TransferOutPrefill(p *openmrs.Patient, facility *openmrs.Location, followUps []openmrs.Encounter) map[string]any {
	out := make(map[string]any)
	if name := p.Name(); name != "" {
		out[string(FieldName)] = name
	}
	if mrn := p.Identifier(MRNIdentifierType); mrn != "" {
		out[string(FieldMRN)] = mrn
	}
	if facility != nil {
		from := facility.Display
		if from == "" {
			from = facility.Name
		}
		if from != "" {
			out[string(FieldTransferredFrom)] = from
		}
	}
	for i := range followUps {
		if v, ok := obs.FormValue(&followUps[i], RegimenConcept, false).(string); ok && v != "" {
			out[string(FieldRegimen)] = v
			break
		}
	}
	return out
}
