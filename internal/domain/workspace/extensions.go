// Package workspace serves the KPP extensions to the patient chart: form
// workspaces, summary tables and the encounter delete dialog.
package workspace

import (
	"github.com/icap-ethiopia/kpp/internal/domain/forms"
)

// ExtensionKind tells the shell how to mount an extension.
type ExtensionKind string

const (
	KindWorkspace     ExtensionKind = "workspace"
	KindTable         ExtensionKind = "table"
	KindDashboardLink ExtensionKind = "dashboard-link"
	KindModal         ExtensionKind = "modal"
)

const DeleteDialogExtension = "encounter-delete-confirmation-dialog"

// DashboardMeta places a dashboard link in the patient chart navigation.
type DashboardMeta struct {
	Slot    string `json:"slot"`
	Columns int    `json:"columns"`
	Path    string `json:"path"`
	Title   string `json:"title"`
}

// Extension is one named entry point registered with the shell.
type Extension struct {
	Name      string         `json:"name"`
	Kind      ExtensionKind  `json:"kind"`
	Title     string         `json:"title,omitempty"`
	Workspace string         `json:"workspace,omitempty"`
	Table     string         `json:"table,omitempty"`
	Dashboard *DashboardMeta `json:"dashboard,omitempty"`
}

var (
	TemplateDashboard = DashboardMeta{Slot: "template-esm-dashboard-slot", Columns: 1, Path: "template-esm", Title: "Template-esm"}
	KPPDashboard      = DashboardMeta{Slot: "kpp-dashboard-slot", Columns: 1, Path: "kpp", Title: "KP Prevention"}
	SNSDashboard      = DashboardMeta{Slot: "sns-dashboard-slot", Columns: 1, Path: "sns", Title: "Social Network Service"}
)

// Extensions lists every entry point in a stable order: form workspaces,
// then tables, then dashboard links, then the delete dialog.
func (s *Service) Extensions() []Extension {
	var out []Extension
	for _, def := range s.forms.All() {
		out = append(out, Extension{Name: def.Workspace, Kind: KindWorkspace, Title: def.Title, Workspace: def.Workspace})
	}
	for _, t := range s.tables.All() {
		out = append(out, Extension{Name: t.Name + "-summary", Kind: KindTable, Title: t.Title, Workspace: t.Workspace, Table: t.Name})
	}
	for _, d := range []struct {
		name, workspace string
		meta            DashboardMeta
	}{
		{"template-esm-dashboard-link", forms.TemplateWorkspace, TemplateDashboard},
		{"kpp-dashboard-link", forms.KPPWorkspace, KPPDashboard},
		{"sns-dashboard-link", forms.SNSWorkspace, SNSDashboard},
	} {
		meta := d.meta
		out = append(out, Extension{Name: d.name, Kind: KindDashboardLink, Title: meta.Title, Workspace: d.workspace, Dashboard: &meta})
	}
	out = append(out, Extension{Name: DeleteDialogExtension, Kind: KindModal, Title: "Delete Encounter"})
	return out
}
