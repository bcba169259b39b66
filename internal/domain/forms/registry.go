package forms

import (
	"errors"
	"fmt"
	"sort"

	"github.com/icap-ethiopia/kpp/internal/config"
)

// Workspace names registered with the host shell.
const (
	TransferOutWorkspace = "transfer-out-workspace"
	KPPWorkspace         = "kpp-form-workspace"
	SNSWorkspace         = "sns-form-workspace"
	VitalsWorkspace      = "vitals-form-workspace"
	TemplateWorkspace    = "template-esm-workspace"
)

// Registry looks up form definitions by workspace name.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry builds every form against the deployment's encounter types.
func NewRegistry(et config.EncounterTypes) *Registry {
	r := &Registry{defs: make(map[string]*Definition)}
	for _, d := range []*Definition{
		TransferOut(et.TransferOut, et.TransferOutForm),
		KPP(et.KPP, et.KPPForm),
		SNS(et.SNS, et.SNSForm),
		Vitals(et.Vitals, et.VitalsForm),
		Template(et.Template, et.TemplateForm),
	} {
		r.defs[d.Workspace] = d
	}
	return r
}

func (r *Registry) Get(workspace string) (*Definition, error) {
	d, ok := r.defs[workspace]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorkspace, workspace)
	}
	return d, nil
}

// All returns the definitions sorted by workspace name.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Workspace < out[j].Workspace })
	return out
}

// ConceptReport is the outcome of checking one form's concept map.
type ConceptReport struct {
	Workspace  string
	Fields     int
	Err        error
	Duplicates map[string][]string
}

// CheckConcepts validates every concept map and reports concepts shared by
// more than one field. Shared concepts are legal but worth a look.
func (r *Registry) CheckConcepts() ([]ConceptReport, error) {
	var (
		reports []ConceptReport
		errs    []error
	)
	for _, d := range r.All() {
		rep := ConceptReport{Workspace: d.Workspace, Fields: len(d.StoredFields()), Duplicates: map[string][]string{}}
		if err := d.CheckConcepts(); err != nil {
			rep.Err = err
			errs = append(errs, err)
		}
		byConcept := map[string][]string{}
		for _, f := range d.StoredFields() {
			if c := d.Concepts[f]; c != "" {
				byConcept[c] = append(byConcept[c], string(f))
			}
		}
		for c, fields := range byConcept {
			if len(fields) > 1 {
				sort.Strings(fields)
				rep.Duplicates[c] = fields
			}
		}
		reports = append(reports, rep)
	}
	return reports, errors.Join(errs...)
}
