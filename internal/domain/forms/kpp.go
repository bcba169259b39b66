package forms

import (
	"github.com/icap-ethiopia/kpp/internal/domain/payload"
)

const (
	FieldModalityUsed payload.Field = "modalityUsed"
	FieldSNSQuestions payload.Field = "snsQuestions"
)

// ModalitySNS is the modality value that makes the SNS questions mandatory.
const ModalitySNS = "SNS"

var sexOptions = []Option{{Value: "M", Label: "Male"}, {Value: "F", Label: "Female"}}

var modalityOptions = []Option{
	{Value: "Outreach", Label: "Outreach"},
	{Value: "Hotspot", Label: "Hotspot"},
	{Value: "Index", Label: "Index testing"},
	{Value: ModalitySNS, Label: "Social network service"},
	{Value: "Online", Label: "Online"},
}

var kppConcepts = payload.ConceptMap{
	"firstName":                       "166102AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"fatherName":                      "166574AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"grandfatherName":                 "166103AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"clientUID":                       "162762AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"mrn":                             "162763AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"reachedWithPackage":              "162765AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"sbccCompleted":                   "5a471ad6-9707-43c1-9751-57f3c5bbf59f",
	"followUpDate":                    "b8cd8630-56dd-495e-8c84-e36a636febe7",
	"dateOfBirth":                     "166575AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"age":                             "1532AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"sex":                             "1533AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"riskBehaviors":                   "beaaba00-bc94-40f4-bb3c-aaa97b23b2c4",
	"targetGroup":                     "ca2c04ba-d9bd-4bad-ab03-e57ea9e49016",
	"modalityUsed":                    "79c5e586-95a0-40af-a34c-852909d6a88d",
	"hivTestedPreviously":             "f4bcd7bc-83c2-40b1-9159-dadb97a83fc8",
	"hivTestResult":                   "23ef2580-e9e5-4e1b-af9b-584cdd30abc4",
	"durationSinceLastTest":           "d002eb43-bcba-4435-8e0d-b0a6130f09bd",
	"hivSelfTestDistributed":          "166464AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"hivSelfTestModality":             "2f8edc50-7018-4557-bb23-2bb28d3f4092",
	"hivSelfTestFor":                  "55d35624-fb83-400b-8cfb-0783e3a0ef65",
	"selfTestResultReported":          "fe83f450-4966-4fc6-8b50-375b6d64f546",
	"hivSelfTestResult":               "e77fb81b-7811-41e4-8f30-af101d9c1c6b",
	"conventionalTestDone":            "164401AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"conventionalTestDate":            "160082AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"conventionalTestResult":          "40d1c129-5373-4005-95b1-409e56db9743",
	"linkageToCare":                   "c1bb9738-10aa-4905-bb5d-af4e55b4bb69",
	"artStarted":                      "95daa4f8-b45d-4dee-b5d0-5f9446d22c19",
	"artStartDate":                    "ae329187-6232-4142-aa91-22c85bc8e5b5",
	"uniqueArtNumber":                 "c8d98ef1-5e58-417c-a7c3-7f30f76a7155",
	"pregnancyTestDone":               "f562d24b-4c2f-44cd-b894-7ee94ef0078c",
	"hcgTestResult":                   "d30935f7-49ab-4984-b9e7-b18391a7efc8",
	"prepEligible":                    "f9747f64-d9ad-496d-888d-4a3de096ff8d",
	"prepStarted":                     "3b4bc0b2-acbb-4fb5-82eb-6f0479915862",
	"prepStartDate":                   "a216f62d-5b73-4b99-b96a-37172a0c811e",
	"prepNotStartedReasons":           "e03bd6fa-2733-4ea7-b8b5-fc3221b4ca36",
	"prepType":                        "a501dd8a-8aa3-4595-a0be-2d7519504612",
	"prepFollowUpStatus":              "b23c8ae7-cd07-4ec2-b60c-ad0e46f0d6f9",
	"prepPreviously":                  "740e5d37-2b4e-4a38-907d-f6c2cd828af7",
	"prepNotContinuedReasons":         "165144AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"prepSideEffects":                 "6d9482a5-4686-4fa2-a35a-ea6c0daa5d1f",
	"prepAdherence":                   "23d97715-589c-4dcf-bb86-70e26bba2269",
	"pepDischargeDate":                "18f78400-d91c-40ea-bd9f-4388c10d50c1",
	"nextAppointmentDate":             "c596f199-4d76-4eca-b3c4-ffa631c0aee9",
	"stiScreened":                     "f461ff79-1873-4f80-bffd-6b3164db7e88",
	"syndromicStiDiagnosis":           "7a643a93-3f11-4ad0-acfa-b15f2d7c8ddc",
	"stiManagementProvided":           "a64f8fa4-5e3d-47d9-b1c3-fe7a6998e99c",
	"tbScreened":                      "feebf47b-c11e-4fa7-bb4b-1a9fc444bcc9",
	"tbScreeningResult":               "c20140f7-d45d-4b44-a1b9-0534861a615d",
	"tbConfirmed":                     "ceeb9fe5-3f90-4abd-9b7b-0188fd8c4991",
	"tbLinked":                        "f47dfd57-f4a1-4d18-b47f-46126de40318",
	"mentalHealthScreened":            "0f19d323-f7c9-4b64-b1ec-9bd5cd37ebec",
	"mhiSudIdentified":                "160246AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"mhiSudLinked":                    "d25ddd73-6d0e-49db-9b7d-99c376f2469e",
	"hepBTested":                      "6c6a1af6-f37b-4e40-9dc3-cb69c1e9d96c",
	"hepBResult":                      "1322AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"hepBReferred":                    "6b2fdc09-6981-47f3-badd-b66c54207225",
	"hepBVaccination":                 "b91b464f-fcb3-44e3-9666-546f3fbe1a27",
	"hepCTested":                      "aa82f32b-93f4-4b9e-b26a-9242455abcf6",
	"hepCResult":                      "1325AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"hepCReferred":                    "404360b6-3326-41da-950c-edc66d303adf",
	"fpCounseling":                    "1382AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"fpMethodProvided":                "8d5be308-7205-4a57-844e-968f62850e65",
	"fpMethodType":                    "160576AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"condomDemo":                      "408f420c-284e-456c-9c8e-89f18fcc02b0",
	"condomsProvided":                 "159777AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"condomCount":                     "1f0bb965-e2ec-4f74-a640-9ca0082711d1",
	"gbvAssessment":                   "162826AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"gbvOutcome":                      "162827AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"gbvLinked":                       "162828AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"gbvServiceProvided":              "162829AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"cervicalCancerEligible":          "162830AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"cervicalCancerCounselled":        "162831AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"cervicalCancerScreened":          "162832AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"cervicalCancerNotScreenedReason": "162833AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"cervicalCancerResult":            "162834AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"cervicalCancerTreatment":         "162835AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"lastFollowUpOutcome":             "162836AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"finalDecision":                   "162837AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"couponId":                        "162838AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"couponReturnDate":                "162839AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	"etbPaid":                         "162840AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
}

// KPP is the key population prevention client form.
func KPP(encounterType, formUUID string) *Definition {
	return &Definition{
		Workspace:     KPPWorkspace,
		Title:         "KP Prevention",
		EncounterType: encounterType,
		FormUUID:      formUUID,
		Concepts:      kppConcepts,
		Fields:        kppFields,
	}
}

var kppFields = []FieldSpec{
	{Name: "firstName", Label: "First Name", Kind: KindText},
	{Name: "fatherName", Label: "Father Name", Kind: KindText},
	{Name: "grandfatherName", Label: "Grandfather Name", Kind: KindText},
	{Name: "clientUID", Label: "Client UID", Kind: KindText, Required: true},
	{Name: "mrn", Label: "MRN", Kind: KindText},
	{Name: "reachedWithPackage", Label: "Reached With Package", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "sbccCompleted", Label: "SBCC Completed", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "followUpDate", Label: "Follow Up Date", Kind: KindDate, Required: true},
	{Name: "dateOfBirth", Label: "Date Of Birth", Kind: KindDate, Required: true},
	{Name: "age", Label: "Age", Kind: KindNumber, Required: true, Rule: "min=0,max=150"},
	{Name: "sex", Label: "Sex", Kind: KindSelect, Required: true, Options: sexOptions},
	{Name: "riskBehaviors", Label: "Risk Behaviors", Kind: KindMultiSelect, Required: true},
	{Name: "targetGroup", Label: "Target Group", Kind: KindMultiSelect, Required: true},
	{Name: "modalityUsed", Label: "Modality Used", Kind: KindSelect, Options: modalityOptions},
	{Name: "hivTestedPreviously", Label: "HIV Tested Previously", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "hivTestResult", Label: "HIV Test Result", Kind: KindSelect},
	{Name: "durationSinceLastTest", Label: "Duration Since Last Test", Kind: KindSelect},
	{Name: "hivSelfTestDistributed", Label: "HIV Self-test Distributed", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "hivSelfTestModality", Label: "HIV Self-test Modality", Kind: KindSelect},
	{Name: "hivSelfTestFor", Label: "HIV Self-test For", Kind: KindSelect},
	{Name: "selfTestResultReported", Label: "Self-test Result Reported", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "hivSelfTestResult", Label: "HIV Self-test Result", Kind: KindSelect},
	{Name: "conventionalTestDone", Label: "Conventional Test Done", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "conventionalTestDate", Label: "Conventional Test Date", Kind: KindDate},
	{Name: "conventionalTestResult", Label: "Conventional Test Result", Kind: KindSelect},
	{Name: "linkageToCare", Label: "Linkage To Care", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "artStarted", Label: "ART Started", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "artStartDate", Label: "ART Start Date", Kind: KindDate},
	{Name: "uniqueArtNumber", Label: "Unique ART Number", Kind: KindText},
	{Name: "pregnancyTestDone", Label: "Pregnancy Test Done", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "hcgTestResult", Label: "HCG Test Result", Kind: KindSelect},
	{Name: "prepEligible", Label: "PrEP Eligible", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "prepStarted", Label: "PrEP Started", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "prepStartDate", Label: "PrEP Start Date", Kind: KindDate},
	{Name: "prepNotStartedReasons", Label: "PrEP Not Started Reasons", Kind: KindMultiSelect},
	{Name: "prepType", Label: "PrEP Type", Kind: KindSelect},
	{Name: "prepFollowUpStatus", Label: "PrEP Follow Up Status", Kind: KindSelect},
	{Name: "prepPreviously", Label: "PrEP Previously", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "prepNotContinuedReasons", Label: "PrEP Not Continued Reasons", Kind: KindMultiSelect},
	{Name: "prepSideEffects", Label: "PrEP Side Effects", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "prepAdherence", Label: "PrEP Adherence", Kind: KindSelect},
	{Name: "pepDischargeDate", Label: "PEP Discharge Date", Kind: KindDate},
	{Name: "nextAppointmentDate", Label: "Next Appointment Date", Kind: KindDate},
	{Name: "stiScreened", Label: "STI Screened", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "syndromicStiDiagnosis", Label: "Syndromic STI Diagnosis", Kind: KindSelect},
	{Name: "stiManagementProvided", Label: "STI Management Provided", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "tbScreened", Label: "TB Screened", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "tbScreeningResult", Label: "TB Screening Result", Kind: KindSelect},
	{Name: "tbConfirmed", Label: "TB Confirmed", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "tbLinked", Label: "TB Linked", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "mentalHealthScreened", Label: "Mental Health Screened", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "mhiSudIdentified", Label: "MHI/SUD Identified", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "mhiSudLinked", Label: "MHI/SUD Linked", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "hepBTested", Label: "Hepatitis B Tested", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "hepBResult", Label: "Hepatitis B Result", Kind: KindSelect},
	{Name: "hepBReferred", Label: "Hepatitis B Referred", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "hepBVaccination", Label: "Hepatitis B Vaccination", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "hepCTested", Label: "Hepatitis C Tested", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "hepCResult", Label: "Hepatitis C Result", Kind: KindSelect},
	{Name: "hepCReferred", Label: "Hepatitis C Referred", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "fpCounseling", Label: "FP Counseling", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "fpMethodProvided", Label: "FP Method Provided", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "fpMethodType", Label: "FP Method Type", Kind: KindMultiSelect},
	{Name: "condomDemo", Label: "Condom Demo", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "condomsProvided", Label: "Condoms Provided", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "condomCount", Label: "Condom Count", Kind: KindNumber, Rule: "min=0"},
	{Name: "gbvAssessment", Label: "GBV Assessment", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "gbvOutcome", Label: "GBV Outcome", Kind: KindSelect},
	{Name: "gbvLinked", Label: "GBV Linked", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "gbvServiceProvided", Label: "GBV Service Provided", Kind: KindMultiSelect},
	{Name: "cervicalCancerEligible", Label: "Cervical Cancer Eligible", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "cervicalCancerCounselled", Label: "Cervical Cancer Counselled", Kind: KindYesNo, Options: yesNoOptions},
	{Name: "cervicalCancerScreened", Label: "Cervical Cancer Screened", Kind: KindYesNo, Required: true, Options: yesNoOptions},
	{Name: "cervicalCancerNotScreenedReason", Label: "Cervical Cancer Not Screened Reason", Kind: KindSelect},
	{Name: "cervicalCancerResult", Label: "Cervical Cancer Result", Kind: KindSelect},
	{Name: "cervicalCancerTreatment", Label: "Cervical Cancer Treatment", Kind: KindSelect},
	{Name: "lastFollowUpOutcome", Label: "Last Follow Up Outcome", Kind: KindSelect},
	{Name: "finalDecision", Label: "Final Decision", Kind: KindSelect},
	{Name: "couponId", Label: "Coupon Id", Kind: KindText},
	{Name: "couponReturnDate", Label: "Coupon Return Date", Kind: KindDate},
	{Name: "etbPaid", Label: "ETB paid", Kind: KindYesNo, Options: yesNoOptions},
	{Name: FieldSNSQuestions, Label: "SNS questions", Kind: KindText, Transient: true,
		RequiredIf: &Condition{Field: FieldModalityUsed, Equals: ModalitySNS}},
}
