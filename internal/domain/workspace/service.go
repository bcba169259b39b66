package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/icap-ethiopia/kpp/internal/domain/forms"
	"github.com/icap-ethiopia/kpp/internal/domain/ledger"
	"github.com/icap-ethiopia/kpp/internal/domain/payload"
	"github.com/icap-ethiopia/kpp/internal/domain/summary"
	"github.com/icap-ethiopia/kpp/internal/platform/auth"
	"github.com/icap-ethiopia/kpp/internal/platform/cache"
	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
	"github.com/icap-ethiopia/kpp/pkg/pagination"
)

// followUpLimit bounds the follow-up visits read for transfer-out prefill.
const followUpLimit = 5

// Gateway is the part of the OpenMRS client the workspaces use.
type Gateway interface {
	EncountersURL(q openmrs.EncounterQuery) string
	ListEncounters(ctx context.Context, q openmrs.EncounterQuery) ([]openmrs.Encounter, error)
	GetEncounter(ctx context.Context, encounterUUID string) (*openmrs.Encounter, error)
	SaveEncounter(ctx context.Context, encounterUUID string, p *openmrs.EncounterPayload) (*openmrs.Encounter, error)
	DeleteEncounter(ctx context.Context, encounterUUID string) error
	FacilityLocation(ctx context.Context, query, tag string) (*openmrs.Location, error)
	GetPatient(ctx context.Context, patientUUID string) (*openmrs.Patient, error)
}

// GatewayError marks a failed OpenMRS call made on behalf of a workspace.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }

type Config struct {
	FacilityLocationTag   string
	FollowUpEncounterType string
	// Location is the zone form dates are entered in.
	Location *time.Location
}

type Service struct {
	gw        Gateway
	submitter *payload.Submitter
	guard     *payload.InFlightGuard
	forms     *forms.Registry
	tables    *summary.Catalog
	cache     *cache.Revalidator
	ledger    ledger.Repository
	cfg       Config
	logger    zerolog.Logger
	nowFunc   func() time.Time
}

func NewService(gw Gateway, reg *forms.Registry, tables *summary.Catalog, rv *cache.Revalidator, lg ledger.Repository, cfg Config, logger zerolog.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		gw:        gw,
		submitter: payload.NewSubmitter(gw),
		guard:     payload.NewInFlightGuard(),
		forms:     reg,
		tables:    tables,
		cache:     rv,
		ledger:    lg,
		cfg:       cfg,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

func (s *Service) encounterQuery(patient, encounterType string) openmrs.EncounterQuery {
	return openmrs.EncounterQuery{Patient: patient, EncounterType: encounterType}
}

func (s *Service) encounters(ctx context.Context, q openmrs.EncounterQuery) ([]openmrs.Encounter, error) {
	return cache.Fetch(ctx, s.cache, s.gw.EncountersURL(q), func(ctx context.Context) ([]openmrs.Encounter, error) {
		return s.gw.ListEncounters(ctx, q)
	})
}

func (s *Service) facility(ctx context.Context) (*openmrs.Location, error) {
	return cache.Fetch(ctx, s.cache, "facility:"+s.cfg.FacilityLocationTag, func(ctx context.Context) (*openmrs.Location, error) {
		return s.gw.FacilityLocation(ctx, "", s.cfg.FacilityLocationTag)
	})
}

// TablePage is one page of a summary table.
type TablePage struct {
	Table     string                 `json:"table"`
	Title     string                 `json:"title"`
	Workspace string                 `json:"workspace"`
	Headers   []summary.ColumnHeader `json:"headers"`
	Rows      *pagination.Response   `json:"rows"`
}

// Table renders the patient's encounters for a summary table, newest first,
// filtered by q and paginated.
func (s *Service) Table(ctx context.Context, patient, name, q string, p pagination.Params) (*TablePage, error) {
	t, err := s.tables.Get(name)
	if err != nil {
		return nil, err
	}
	encs, err := s.encounters(ctx, s.encounterQuery(patient, t.EncounterType))
	if err != nil {
		return nil, &GatewayError{Op: "list encounters", Err: err}
	}

	rows := summary.Filter(t.Rows(encs, s.cfg.Location), q)
	return &TablePage{
		Table:     t.Name,
		Title:     t.Title,
		Workspace: t.Workspace,
		Headers:   t.Headers(),
		Rows:      pagination.NewResponse(pagination.Slice(rows, p), len(rows), p),
	}, nil
}

// FormState is what a workspace opens with.
type FormState struct {
	Workspace     string            `json:"workspace"`
	Title         string            `json:"title"`
	EncounterUUID string            `json:"encounter_uuid,omitempty"`
	Fields        []forms.FieldSpec `json:"fields"`
	Values        map[string]any    `json:"values"`
}

// Open loads a workspace form. With an encounter it is prefilled from that
// encounter; a new transfer-out form is prefilled from the patient record.
func (s *Service) Open(ctx context.Context, patient, workspace, encounterUUID string) (*FormState, error) {
	def, err := s.forms.Get(workspace)
	if err != nil {
		return nil, err
	}
	state := &FormState{
		Workspace:     def.Workspace,
		Title:         def.Title,
		EncounterUUID: encounterUUID,
		Fields:        def.Fields,
		Values:        map[string]any{},
	}

	if encounterUUID != "" {
		enc, err := s.gw.GetEncounter(ctx, encounterUUID)
		if err != nil {
			return nil, &GatewayError{Op: "get encounter", Err: err}
		}
		state.Values = def.Prefill(enc)
		return state, nil
	}

	if workspace == forms.TransferOutWorkspace {
		values, err := s.transferOutPrefill(ctx, patient)
		if err != nil {
			return nil, err
		}
		state.Values = values
	}
	return state, nil
}

func (s *Service) transferOutPrefill(ctx context.Context, patient string) (map[string]any, error) {
	p, err := s.gw.GetPatient(ctx, patient)
	if err != nil {
		return nil, &GatewayError{Op: "get patient", Err: err}
	}

	facility, err := s.facility(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient", patient).Msg("transfer-out prefill without facility")
		facility = nil
	}

	var followUps []openmrs.Encounter
	if s.cfg.FollowUpEncounterType != "" {
		q := s.encounterQuery(patient, s.cfg.FollowUpEncounterType)
		q.Limit = followUpLimit
		followUps, err = s.gw.ListEncounters(ctx, q)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient", patient).Msg("transfer-out prefill without follow-up visits")
		}
	}
	return forms.TransferOutPrefill(p, facility, followUps), nil
}

// SubmitResult is returned after a successful save.
type SubmitResult struct {
	EncounterUUID string       `json:"encounter_uuid"`
	Created       bool         `json:"created"`
	Unmapped      []string     `json:"unmapped,omitempty"`
	Notification  Notification `json:"notification"`
}

// Submit validates raw form values and writes them to OpenMRS as a new
// encounter, or over encounterUUID when set. Validation failures come back as
// forms.FieldErrors, an overlapping submit as payload.ErrSubmissionInFlight
// and host failures as *GatewayError.
func (s *Service) Submit(ctx context.Context, sess auth.Session, patient, workspace, encounterUUID string, raw map[string]any) (*SubmitResult, error) {
	def, err := s.forms.Get(workspace)
	if err != nil {
		return nil, err
	}
	action := ledger.ActionCreate
	if encounterUUID != "" {
		action = ledger.ActionUpdate
	}
	entry := &ledger.Entry{
		Workspace:     workspace,
		PatientUUID:   patient,
		EncounterUUID: encounterUUID,
		ProviderUUID:  sess.ProviderUUID,
		Action:        action,
	}

	values, errs := def.Decode(raw, s.cfg.Location)
	if len(errs) == 0 {
		errs = def.Validate(values)
	}
	if len(errs) > 0 {
		s.record(ctx, entry, ledger.StatusRejected, errs)
		return nil, errs
	}

	release, err := s.guard.Acquire(payload.GuardKey(patient, workspace))
	if err != nil {
		return nil, err
	}
	defer release()

	location := sess.LocationUUID
	if location == "" {
		loc, err := s.facility(ctx)
		if err != nil {
			gerr := &GatewayError{Op: "resolve facility", Err: err}
			s.record(ctx, entry, ledger.StatusFailed, gerr)
			return nil, gerr
		}
		location = loc.UUID
	}

	p, diag := payload.Build(def.Observed(values), def.Concepts, payload.Meta{
		Datetime:      s.nowFunc(),
		Providers:     []openmrs.PayloadProvider{{Provider: sess.ProviderUUID, EncounterRole: sess.EncounterRoleUUID}},
		EncounterType: def.EncounterType,
		FormUUID:      def.FormUUID,
		Location:      location,
		Patient:       patient,
	})
	unmapped := make([]string, 0, len(diag.Unmapped))
	for _, f := range diag.Unmapped {
		unmapped = append(unmapped, string(f))
	}
	if len(unmapped) > 0 {
		s.logger.Warn().Str("workspace", workspace).Strs("fields", unmapped).Msg("fields without concept dropped from encounter")
	}
	entry.Unmapped = unmapped

	enc, err := s.submitter.Submit(ctx, p, encounterUUID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("workspace", workspace).
			Str("patient", patient).
			Str("encounter", encounterUUID).
			Msg("encounter save failed")
		gerr := &GatewayError{Op: "save encounter", Err: err}
		s.record(ctx, entry, ledger.StatusFailed, gerr)
		return nil, gerr
	}

	s.cache.Invalidate(ctx, s.gw.EncountersURL(s.encounterQuery(patient, def.EncounterType)))
	if enc.UUID != "" {
		entry.EncounterUUID = enc.UUID
	} else if encounterUUID == "" {
		s.logger.Warn().
			Str("workspace", workspace).
			Str("patient", patient).
			Msg("encounter created but host returned no uuid")
	}
	s.record(ctx, entry, ledger.StatusSucceeded, nil)

	return &SubmitResult{
		EncounterUUID: entry.EncounterUUID,
		Created:       encounterUUID == "",
		Unmapped:      unmapped,
		Notification:  savedNotification(encounterUUID == ""),
	}, nil
}

// Delete voids an encounter shown in workspace's table.
func (s *Service) Delete(ctx context.Context, sess auth.Session, patient, workspace, encounterUUID string) (Notification, error) {
	def, err := s.forms.Get(workspace)
	if err != nil {
		return Notification{}, err
	}
	entry := &ledger.Entry{
		Workspace:     workspace,
		PatientUUID:   patient,
		EncounterUUID: encounterUUID,
		ProviderUUID:  sess.ProviderUUID,
		Action:        ledger.ActionDelete,
	}

	if err := s.gw.DeleteEncounter(ctx, encounterUUID); err != nil {
		s.logger.Error().Err(err).
			Str("workspace", workspace).
			Str("patient", patient).
			Str("encounter", encounterUUID).
			Msg("encounter delete failed")
		gerr := &GatewayError{Op: "delete encounter", Err: err}
		s.record(ctx, entry, ledger.StatusFailed, gerr)
		return deleteFailedNotification(err), gerr
	}

	s.cache.Invalidate(ctx, s.gw.EncountersURL(s.encounterQuery(patient, def.EncounterType)))
	s.record(ctx, entry, ledger.StatusSucceeded, nil)
	return deletedNotification(), nil
}

// Submissions pages through the patient's ledger, newest first.
func (s *Service) Submissions(ctx context.Context, patient string, p pagination.Params) (*pagination.Response, error) {
	entries, total, err := s.ledger.ListByPatient(ctx, patient, p.PageSize, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return pagination.NewResponse(entries, total, p), nil
}

// record writes a ledger entry. Ledger failures are logged; they never undo
// or fail the OpenMRS write.
func (s *Service) record(ctx context.Context, e *ledger.Entry, status ledger.Status, cause error) {
	e.Status = status
	if cause != nil {
		e.Error = cause.Error()
	}
	if err := s.ledger.Record(ctx, e); err != nil {
		s.logger.Error().Err(err).
			Str("workspace", e.Workspace).
			Str("patient", e.PatientUUID).
			Str("action", string(e.Action)).
			Msg("ledger write failed")
	}
}

// IsGatewayError reports whether err came from OpenMRS.
func IsGatewayError(err error) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr)
}
