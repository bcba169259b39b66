package summary

import (
	"errors"
	"fmt"
	"sort"

	"github.com/icap-ethiopia/kpp/internal/domain/forms"
	"github.com/icap-ethiopia/kpp/internal/domain/payload"
)

// ErrUnknownTable is returned for table names that are not registered.
var ErrUnknownTable = errors.New("unknown table")

// Catalog holds the summary tables shown on the patient chart.
type Catalog struct {
	tables map[string]*Table
}

// NewCatalog derives every table from the form it lists.
func NewCatalog(reg *forms.Registry) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]*Table)}
	specs := []struct {
		name, title, workspace string
		columns                func(*forms.Definition) []Column
	}{
		{"transfer-out", "Transfer Out", forms.TransferOutWorkspace, transferOutColumns},
		{"kpp", "KP Prevention", forms.KPPWorkspace, encounterColumns},
		{"sns", "Social Network Service", forms.SNSWorkspace, encounterColumns},
		{"vitals", "Vital Signs", forms.VitalsWorkspace, vitalsColumns},
		{"template-esm", "Template-esm", forms.TemplateWorkspace, templateColumns},
	}
	for _, s := range specs {
		def, err := reg.Get(s.workspace)
		if err != nil {
			return nil, err
		}
		c.tables[s.name] = &Table{
			Name:          s.name,
			Title:         s.title,
			Workspace:     s.workspace,
			EncounterType: def.EncounterType,
			Columns:       s.columns(def),
		}
	}
	return c, nil
}

func (c *Catalog) Get(name string) (*Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// All returns the tables sorted by name.
func (c *Catalog) All() []*Table {
	out := make([]*Table, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func obsColumn(def *forms.Definition, f payload.Field, header string) Column {
	fs, _ := def.Field(f)
	return Column{
		Key:     string(f),
		Header:  header,
		Concept: def.Concepts[f],
		Date:    fs.Kind == forms.KindDate,
	}
}

func transferOutColumns(def *forms.Definition) []Column {
	return []Column{
		obsColumn(def, forms.FieldTransferredTo, "Transferred to"),
		obsColumn(def, forms.FieldDateOfTransfer, "Date of Transfer"),
		obsColumn(def, forms.FieldName, "Name"),
		obsColumn(def, forms.FieldMRN, "MRN"),
		obsColumn(def, forms.FieldArtStarted, "ART Started"),
		obsColumn(def, forms.FieldRegimen, "Regimen"),
	}
}

func encounterColumns(*forms.Definition) []Column {
	return []Column{EncounterTypeColumn(), EncounterDateColumn(), LocationColumn()}
}

func vitalsColumns(def *forms.Definition) []Column {
	return []Column{
		EncounterDateColumn(),
		obsColumn(def, "bloodPressureSystolic", "Systolic"),
		obsColumn(def, "bloodPressureDiastolic", "Diastolic"),
		obsColumn(def, "temperature", "Temp"),
		obsColumn(def, "pulse", "Pulse"),
	}
}

func templateColumns(def *forms.Definition) []Column {
	return []Column{
		obsColumn(def, "sampleTextInput", "temp_col_1"),
		obsColumn(def, "sampleDate", "temp_col_2"),
		obsColumn(def, "sampleNumber", "temp_col_3"),
	}
}
