package forms

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icap-ethiopia/kpp/internal/config"
	"github.com/icap-ethiopia/kpp/internal/domain/payload"
	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

func testRegistry() *Registry {
	return NewRegistry(config.EncounterTypes{
		TransferOut: "et-transfer", KPP: "et-kpp", SNS: "et-sns", Vitals: "et-vitals", Template: "et-template",
		TransferOutForm: "f-transfer", KPPForm: "f-kpp", SNSForm: "f-sns", VitalsForm: "f-vitals", TemplateForm: "f-template",
	})
}

func TestRegistry_EveryStoredFieldMapped(t *testing.T) {
	reports, err := testRegistry().CheckConcepts()
	require.NoError(t, err)
	require.Len(t, reports, 5)
	for _, r := range reports {
		assert.NoError(t, r.Err, r.Workspace)
		assert.Positive(t, r.Fields, r.Workspace)
	}
}

func TestRegistry_FormsDoNotShareConcepts(t *testing.T) {
	reports, err := testRegistry().CheckConcepts()
	require.NoError(t, err)
	for _, r := range reports {
		assert.Empty(t, r.Duplicates, r.Workspace)
	}
}

func TestRegistry_ReportsSharedConcepts(t *testing.T) {
	d := KPP("et-kpp", "f-kpp")
	shared := make(payload.ConceptMap, len(d.Concepts))
	for f, c := range d.Concepts {
		shared[f] = c
	}
	shared["prepNotContinuedReasons"] = shared["prepNotStartedReasons"]
	d.Concepts = shared

	reports, _ := (&Registry{defs: map[string]*Definition{d.Workspace: d}}).CheckConcepts()
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"prepNotContinuedReasons", "prepNotStartedReasons"},
		reports[0].Duplicates["e03bd6fa-2733-4ea7-b8b5-fc3221b4ca36"])
}

func TestRegistry_Get(t *testing.T) {
	r := testRegistry()
	d, err := r.Get(TransferOutWorkspace)
	require.NoError(t, err)
	assert.Equal(t, "et-transfer", d.EncounterType)
	assert.Equal(t, "f-transfer", d.FormUUID)

	_, err = r.Get("nope")
	assert.True(t, errors.Is(err, ErrUnknownWorkspace))
}

func TestDecode_Kinds(t *testing.T) {
	d := KPP("et", "f")
	eat := time.FixedZone("EAT", 3*60*60)

	values, errs := d.Decode(map[string]any{
		"age":           "23",
		"condomCount":   float64(12),
		"riskBehaviors": []any{"sti", "drugUse"},
		"followUpDate":  "2024-03-10",
		"artStartDate":  map[string]any{"start": "2024-01-01", "end": "2024-01-31"},
		"sex":           "F",
		"extra":         "kept",
	}, eat)
	require.Nil(t, errs)

	assert.Equal(t, float64(23), values["age"])
	assert.Equal(t, float64(12), values["condomCount"])
	assert.Equal(t, []string{"sti", "drugUse"}, values["riskBehaviors"])
	assert.Equal(t, "kept", values["extra"])

	follow, ok := values["followUpDate"].(payload.DateRange)
	require.True(t, ok)
	assert.True(t, time.Date(2024, 3, 10, 0, 0, 0, 0, eat).Equal(follow.Start))

	art := values["artStartDate"].(payload.DateRange)
	assert.Equal(t, 31, art.End.Day())
}

func TestDecode_BadDateIsFieldError(t *testing.T) {
	_, errs := TransferOut("et", "f").Decode(map[string]any{"dateOfTransfer": "10/03/2024"}, time.UTC)
	require.NotNil(t, errs)
	assert.Contains(t, errs[FieldDateOfTransfer], "invalid date")
}

func TestDecode_BadNumberIsFieldError(t *testing.T) {
	_, errs := Vitals("et", "f").Decode(map[string]any{"pulse": "fast"}, time.UTC)
	require.NotNil(t, errs)
	assert.Equal(t, "must be a number", errs["pulse"])
}

func validTransferOut() payload.Values {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return payload.Values{
		FieldTransferredFrom: "Adama HC",
		FieldTransferredTo:   "Bishoftu HC",
		FieldName:            "Almaz Tesfaye",
		FieldMRN:             "MRN-77",
		FieldArtStarted:      YesConcept,
		FieldRegimen:         "a9da3e97-3916-4834-854c-6bcbc5142aca",
		FieldDateOfTransfer:  payload.DateRange{Start: start, End: start},
	}
}

func TestValidate_TransferOut(t *testing.T) {
	d := TransferOut("et", "f")
	assert.Nil(t, d.Validate(validTransferOut()))

	v := validTransferOut()
	delete(v, FieldTransferredTo)
	v[FieldRegimen] = "unknown-regimen"
	errs := d.Validate(v)
	require.NotNil(t, errs)
	assert.Equal(t, "is required", errs[FieldTransferredTo])
	assert.Contains(t, errs[FieldRegimen], "not an allowed option")
	assert.Contains(t, errs.Error(), "transferredTo: is required")
}

func TestValidate_AgeZeroIsAnswered(t *testing.T) {
	d := KPP("et", "f")
	errs := d.Validate(payload.Values{"age": float64(0)})
	require.NotNil(t, errs)
	_, hasAge := errs["age"]
	assert.False(t, hasAge)

	errs = d.Validate(payload.Values{"age": float64(-1)})
	assert.Equal(t, "must be at least 0", errs["age"])
}

func TestValidate_KPPRequiresSNSQuestionsForSNSModality(t *testing.T) {
	d := KPP("et", "f")

	errs := d.Validate(payload.Values{FieldModalityUsed: ModalitySNS})
	assert.Equal(t, "is required", errs[FieldSNSQuestions])

	errs = d.Validate(payload.Values{FieldModalityUsed: "Outreach"})
	_, has := errs[FieldSNSQuestions]
	assert.False(t, has)

	errs = d.Validate(payload.Values{FieldModalityUsed: ModalitySNS, FieldSNSQuestions: "answered"})
	_, has = errs[FieldSNSQuestions]
	assert.False(t, has)
}

func TestValidate_KPPMultiSelectRequired(t *testing.T) {
	errs := KPP("et", "f").Validate(payload.Values{"riskBehaviors": []string{}})
	assert.Equal(t, "is required", errs["riskBehaviors"])
}

func TestValidate_SNSCoupons(t *testing.T) {
	d := SNS("et", "f")
	date := payload.DateRange{Start: time.Now(), End: time.Now()}

	assert.Nil(t, d.Validate(payload.Values{FieldSampleDate: date, FieldIsCouponGiven: NoConcept}))

	errs := d.Validate(payload.Values{FieldSampleDate: date, FieldIsCouponGiven: YesConcept})
	assert.Contains(t, errs[FieldNumberOfCoupons], "greater than 0")

	errs = d.Validate(payload.Values{
		FieldSampleDate: date, FieldIsCouponGiven: YesConcept,
		FieldNumberOfCoupons: float64(2), FieldCoupons: []string{"C-1"},
	})
	assert.Equal(t, "expected 2 coupon ids, got 1", errs[FieldCoupons])

	errs = d.Validate(payload.Values{
		FieldSampleDate: date, FieldIsCouponGiven: YesConcept,
		FieldNumberOfCoupons: float64(2), FieldCoupons: []string{"C-1", " "},
	})
	assert.Equal(t, "coupon 2 id is required", errs[FieldCoupons])

	assert.Nil(t, d.Validate(payload.Values{
		FieldSampleDate: date, FieldIsCouponGiven: YesConcept,
		FieldNumberOfCoupons: float64(2), FieldCoupons: []string{"C-1", "C-2"},
	}))
}

func TestValidate_VitalsRanges(t *testing.T) {
	d := Vitals("et", "f")
	assert.Nil(t, d.Validate(payload.Values{"pulse": float64(72), "temperature": 36.6}))

	errs := d.Validate(payload.Values{"pulse": float64(400)})
	assert.Equal(t, "must be at most 230", errs["pulse"])
}

func TestObserved_DropsTransientFields(t *testing.T) {
	d := KPP("et", "f")
	out := d.Observed(payload.Values{FieldSNSQuestions: "x", FieldModalityUsed: ModalitySNS})
	assert.NotContains(t, out, FieldSNSQuestions)
	assert.Contains(t, out, FieldModalityUsed)
}

func TestPrefill_RoundTripsBuiltPayload(t *testing.T) {
	d := KPP("et", "f")
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	p, diag := payload.Build(payload.Values{
		"clientUID":     "KP-001",
		"riskBehaviors": []string{"sti", "drugUse"},
		"followUpDate":  payload.DateRange{Start: start, End: start},
		"prepEligible":  YesConcept,
	}, d.Concepts, payload.Meta{Datetime: start})
	require.Empty(t, diag.Unmapped)

	enc := &openmrs.Encounter{}
	for _, o := range p.Obs {
		v := openmrs.ScalarValue(o.Value)
		if o.Value == YesConcept {
			v = openmrs.CodedValue(openmrs.Concept{UUID: YesConcept})
		}
		enc.Obs = append(enc.Obs, openmrs.Obs{Concept: openmrs.Concept{UUID: o.Concept}, ObsDatetime: p.EncounterDatetime, Value: v})
	}

	got := d.Prefill(enc)
	assert.Equal(t, "KP-001", got["clientUID"])
	assert.Equal(t, []string{"sti", "drugUse"}, got["riskBehaviors"])
	assert.Equal(t, "2024-03-10", got["followUpDate"])
	assert.Equal(t, YesConcept, got["prepEligible"])
	assert.NotContains(t, got, "age")
}

func TestTransferOutPrefill(t *testing.T) {
	patient := &openmrs.Patient{
		UUID:   "p-1",
		Person: &openmrs.Person{PreferredName: &openmrs.PersonName{GivenName: "Almaz", MiddleName: "K", FamilyName: "Tesfaye"}},
		Identifiers: []openmrs.PatientIdentifier{
			{Identifier: "MRN-77", IdentifierType: openmrs.Ref{Display: MRNIdentifierType}},
		},
	}
	facility := &openmrs.Location{UUID: "l-1", Display: "Adama HC"}
	followUps := []openmrs.Encounter{
		{UUID: "fu-1"},
		{UUID: "fu-2", Obs: []openmrs.Obs{{
			Concept: openmrs.Concept{UUID: RegimenConcept},
			Value:   openmrs.CodedValue(openmrs.Concept{UUID: "2798d3bc-2e0a-459c-b249-9516b380a69e"}),
		}}},
		{UUID: "fu-3", Obs: []openmrs.Obs{{
			Concept: openmrs.Concept{UUID: RegimenConcept},
			Value:   openmrs.CodedValue(openmrs.Concept{UUID: "b5951dd9-6bb2-4b63-af20-0707500108ea"}),
		}}},
	}

	got := TransferOutPrefill(patient, facility, followUps)
	assert.Equal(t, "Almaz K Tesfaye", got[string(FieldName)])
	assert.Equal(t, "MRN-77", got[string(FieldMRN)])
	assert.Equal(t, "Adama HC", got[string(FieldTransferredFrom)])
	assert.Equal(t, "2798d3bc-2e0a-459c-b249-9516b380a69e", got[string(FieldRegimen)])

	empty := TransferOutPrefill(&openmrs.Patient{}, nil, nil)
	assert.Empty(t, empty)
}
