package forms

import (
	"fmt"
	"strings"

	"github.com/icap-ethiopia/kpp/internal/domain/payload"
)

const (
	FieldSampleDate      payload.Field = "sampleDate"
	FieldIsCouponGiven   payload.Field = "isCouponGiven"
	FieldNumberOfCoupons payload.Field = "numberOfCoupons"
	FieldCoupons         payload.Field = "coupons"
)

var snsConcepts = payload.ConceptMap{
	FieldSampleDate:      "163137AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	FieldIsCouponGiven:   "165068AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	FieldNumberOfCoupons: "165069AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	FieldCoupons:         "165070AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
}

// SNS is the social network service coupon form.
func SNS(encounterType, formUUID string) *Definition {
	return &Definition{
		Workspace:     SNSWorkspace,
		Title:         "SNS Coupons",
		EncounterType: encounterType,
		FormUUID:      formUUID,
		Concepts:      snsConcepts,
		Fields: []FieldSpec{
			{Name: FieldSampleDate, Label: "Date", Kind: KindDate, Required: true},
			{Name: FieldIsCouponGiven, Label: "Is coupon given?", Kind: KindYesNo, Required: true, Options: yesNoOptions},
			{Name: FieldNumberOfCoupons, Label: "Number of coupons", Kind: KindNumber, Rule: "min=0,max=20"},
			{Name: FieldCoupons, Label: "Coupon IDs", Kind: KindMultiSelect},
		},
		checks: []CrossCheck{checkCoupons},
	}
}

// checkCoupons requires one coupon id per coupon handed out.
func checkCoupons(values payload.Values) FieldErrors {
	errs := FieldErrors{}
	if given, _ := values[FieldIsCouponGiven].(string); given != YesConcept {
		return errs
	}
	n, _ := values[FieldNumberOfCoupons].(float64)
	if n <= 0 {
		errs.add(FieldNumberOfCoupons, "must be greater than 0 when a coupon is given")
		return errs
	}
	ids, _ := values[FieldCoupons].([]string)
	if len(ids) != int(n) {
		errs.add(FieldCoupons, fmt.Sprintf("expected %d coupon ids, got %d", int(n), len(ids)))
		return errs
	}
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			errs.add(FieldCoupons, fmt.Sprintf("coupon %d id is required", i+1))
			break
		}
	}
	return errs
}
