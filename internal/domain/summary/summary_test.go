package summary

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icap-ethiopia/kpp/internal/config"
	"github.com/icap-ethiopia/kpp/internal/domain/forms"
	"github.com/icap-ethiopia/kpp/internal/domain/obs"
	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	reg := forms.NewRegistry(config.EncounterTypes{
		TransferOut: "et-transfer", KPP: "et-kpp", SNS: "et-sns", Vitals: "et-vitals", Template: "et-template",
	})
	c, err := NewCatalog(reg)
	require.NoError(t, err)
	return c
}

func transferEncounter(uuid, at, to string) openmrs.Encounter {
	def := forms.TransferOut("", "")
	return openmrs.Encounter{
		UUID:              uuid,
		EncounterDatetime: at,
		Obs: []openmrs.Obs{
			{Concept: openmrs.Concept{UUID: def.Concepts[forms.FieldTransferredTo]}, ObsDatetime: at, Value: openmrs.ScalarValue(to)},
			{Concept: openmrs.Concept{UUID: def.Concepts[forms.FieldDateOfTransfer]}, ObsDatetime: at, Value: openmrs.ScalarValue("2024-03-10T00:00:00.000+0000")},
			{Concept: openmrs.Concept{UUID: def.Concepts[forms.FieldArtStarted]}, ObsDatetime: at, Value: openmrs.CodedValue(openmrs.Concept{
				UUID: forms.YesConcept, Name: &openmrs.ConceptName{Name: "Yes"},
			})},
		},
	}
}

func TestTransferOutRows(t *testing.T) {
	table, err := testCatalog(t).Get("transfer-out")
	require.NoError(t, err)
	assert.Equal(t, "et-transfer", table.EncounterType)

	rows := table.Rows([]openmrs.Encounter{
		transferEncounter("e-old", "2024-01-01T09:00:00.000+0000", "Adama HC"),
		transferEncounter("e-new", "2024-03-01T09:00:00.000+0000", "Bishoftu HC"),
	}, time.UTC)

	require.Len(t, rows, 2)
	assert.Equal(t, "e-new", rows[0].ID)
	assert.Equal(t, "Bishoftu HC", rows[0].Cells["transferredTo"])
	assert.Equal(t, "10 — Mar — 2024", rows[0].Cells["dateOfTransfer"])
	assert.Equal(t, "Yes", rows[0].Cells["artStarted"])
	assert.Equal(t, obs.NoValue, rows[0].Cells["mrn"])
	assert.Equal(t, obs.NoValue, rows[0].Cells["originalFirstLineRegimenDose"])
}

func TestEncounterColumns(t *testing.T) {
	table, err := testCatalog(t).Get("kpp")
	require.NoError(t, err)

	rows := table.Rows([]openmrs.Encounter{{
		UUID:              "e-1",
		EncounterDatetime: "2024-03-05T10:00:00.000+0000",
		EncounterType:     &openmrs.Ref{UUID: "et-kpp", Display: "KP Prevention"},
		Location:          &openmrs.Ref{UUID: "l-1", Name: "Adama HC"},
	}, {
		UUID: "e-2",
	}}, time.UTC)

	require.Len(t, rows, 2)
	assert.Equal(t, map[string]string{"type": "KP Prevention", "date": "05 — Mar — 2024", "location": "Adama HC"}, rows[0].Cells)
	assert.Equal(t, map[string]string{"type": obs.NoValue, "date": obs.NoValue, "location": obs.NoValue}, rows[1].Cells)
}

func TestFilter_CaseInsensitive(t *testing.T) {
	rows := []Row{
		{ID: "1", Cells: map[string]string{"transferredTo": "Adama HC"}},
		{ID: "2", Cells: map[string]string{"transferredTo": "Bishoftu HC"}},
	}
	got := Filter(rows, "  adama ")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	assert.Len(t, Filter(rows, ""), 2)
	assert.Empty(t, Filter(rows, "hawassa"))
}

func TestCatalog_UnknownTable(t *testing.T) {
	_, err := testCatalog(t).Get("nope")
	assert.True(t, errors.Is(err, ErrUnknownTable))
	assert.Len(t, testCatalog(t).All(), 5)
}

func TestTemplateHeaders(t *testing.T) {
	table, err := testCatalog(t).Get("template-esm")
	require.NoError(t, err)
	assert.Equal(t, []ColumnHeader{
		{Key: "sampleTextInput", Header: "temp_col_1"},
		{Key: "sampleDate", Header: "temp_col_2"},
		{Key: "sampleNumber", Header: "temp_col_3"},
	}, table.Headers())
}
