// Package summary renders a patient's encounters of one type as table rows.
package summary

import (
	"sort"
	"strings"
	"time"

	"github.com/icap-ethiopia/kpp/internal/domain/obs"
	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

// Column is one table column. Cells come from Meta when set, otherwise from
// the observation stored under Concept.
type Column struct {
	Key       string
	Header    string
	Concept   string
	Date      bool
	TrueFalse bool
	Meta      func(*openmrs.Encounter, *time.Location) string
}

// ColumnHeader is the JSON shape of a column.
type ColumnHeader struct {
	Key    string `json:"key"`
	Header string `json:"header"`
}

// Table lists one workspace's encounters.
type Table struct {
	Name          string
	Title         string
	Workspace     string
	EncounterType string
	Columns       []Column
}

// Headers returns the column headers in display order.
func (t *Table) Headers() []ColumnHeader {
	out := make([]ColumnHeader, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = ColumnHeader{Key: c.Key, Header: c.Header}
	}
	return out
}

// Row is one encounter rendered for display.
type Row struct {
	ID       string            `json:"id"`
	Datetime time.Time         `json:"encounter_datetime"`
	Cells    map[string]string `json:"cells"`
}

// Rows renders encs newest first. A missing observation renders as
// obs.NoValue and never drops the row.
func (t *Table) Rows(encs []openmrs.Encounter, loc *time.Location) []Row {
	rows := make([]Row, 0, len(encs))
	for i := range encs {
		enc := &encs[i]
		row := Row{ID: enc.UUID, Datetime: enc.Datetime(), Cells: make(map[string]string, len(t.Columns))}
		for _, col := range t.Columns {
			row.Cells[col.Key] = t.cell(col, enc, loc)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Datetime.After(rows[j].Datetime) })
	return rows
}

func (t *Table) cell(col Column, enc *openmrs.Encounter, loc *time.Location) string {
	if col.Meta != nil {
		return col.Meta(enc, loc)
	}
	var opts []obs.Option
	if col.Date {
		opts = append(opts, obs.AsDate())
	}
	if col.TrueFalse {
		opts = append(opts, obs.AsTrueFalse())
	}
	if loc != nil {
		opts = append(opts, obs.WithLocation(loc))
	}
	return obs.GetValue(enc, col.Concept, opts...).Text
}

// Filter keeps rows where any cell contains q, ignoring case.
func Filter(rows []Row, q string) []Row {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		for _, v := range r.Cells {
			if strings.Contains(strings.ToLower(v), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// EncounterTypeColumn shows the encounter type display name.
func EncounterTypeColumn() Column {
	return Column{Key: "type", Header: "Type", Meta: func(e *openmrs.Encounter, _ *time.Location) string {
		if e.EncounterType == nil || e.EncounterType.Display == "" {
			return obs.NoValue
		}
		return e.EncounterType.Display
	}}
}

// EncounterDateColumn shows the encounter date in the wide date layout.
func EncounterDateColumn() Column {
	return Column{Key: "date", Header: "Date", Meta: func(e *openmrs.Encounter, loc *time.Location) string {
		t := e.Datetime()
		if t.IsZero() {
			return obs.NoValue
		}
		if loc != nil {
			t = t.In(loc)
		}
		return t.Format(obs.WideDateLayout)
	}}
}

// LocationColumn shows the encounter's location name.
func LocationColumn() Column {
	return Column{Key: "location", Header: "Location", Meta: func(e *openmrs.Encounter, _ *time.Location) string {
		if e.Location == nil {
			return obs.NoValue
		}
		if e.Location.Name != "" {
			return e.Location.Name
		}
		if e.Location.Display != "" {
			return e.Location.Display
		}
		return obs.NoValue
	}}
}
