package workspace

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/icap-ethiopia/kpp/internal/domain/forms"
	"github.com/icap-ethiopia/kpp/internal/domain/payload"
	"github.com/icap-ethiopia/kpp/internal/domain/summary"
	"github.com/icap-ethiopia/kpp/internal/platform/auth"
	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
	"github.com/icap-ethiopia/kpp/pkg/pagination"
)

type Handler struct {
	svc        *Service
	writeRoles []string
}

// NewHandler serves svc. Submits and deletes require one of writeRoles; with
// none given any session may write.
func NewHandler(svc *Service, writeRoles ...string) *Handler {
	return &Handler{svc: svc, writeRoles: writeRoles}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/extensions", h.ListExtensions)

	canWrite := auth.RequireRole(h.writeRoles...)

	patients := api.Group("/patients/:patient")
	patients.GET("/tables/:table", h.GetTable)
	patients.GET("/workspaces/:workspace", h.OpenWorkspace)
	patients.POST("/workspaces/:workspace", h.SubmitWorkspace, canWrite)
	patients.DELETE("/encounters/:encounter", h.DeleteEncounter, canWrite)
	patients.GET("/submissions", h.ListSubmissions)
}

type tableRequest struct {
	Patient string `param:"patient" validate:"required,openmrs_uuid"`
	Table   string `param:"table" validate:"required"`
	Query   string `query:"q" validate:"max=200"`
}

type workspaceRequest struct {
	Patient   string `param:"patient" validate:"required,openmrs_uuid"`
	Workspace string `param:"workspace" validate:"required"`
	Encounter string `query:"encounter" validate:"omitempty,openmrs_uuid"`
}

type deleteRequest struct {
	Patient   string `param:"patient" validate:"required,openmrs_uuid"`
	Encounter string `param:"encounter" validate:"required,openmrs_uuid"`
	Workspace string `query:"workspace" validate:"required"`
}

type submissionsRequest struct {
	Patient string `param:"patient" validate:"required,openmrs_uuid"`
}

type submitBody struct {
	Values map[string]any `json:"values" validate:"required"`
}

// bindRequest fills req from path and query parameters and validates it.
func bindRequest(c echo.Context, req interface{}) error {
	b := &echo.DefaultBinder{}
	if err := b.BindPathParams(c, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := b.BindQueryParams(c, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// lookupError maps registry and host errors on read paths.
func lookupError(err error) error {
	switch {
	case errors.Is(err, forms.ErrUnknownWorkspace), errors.Is(err, summary.ErrUnknownTable):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, openmrs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	case IsGatewayError(err):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) ListExtensions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Extensions())
}

func (h *Handler) GetTable(c echo.Context) error {
	var req tableRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	page, err := h.svc.Table(c.Request().Context(), req.Patient, req.Table, req.Query, pagination.FromContext(c))
	if err != nil {
		return lookupError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) OpenWorkspace(c echo.Context) error {
	var req workspaceRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	state, err := h.svc.Open(c.Request().Context(), req.Patient, req.Workspace, req.Encounter)
	if err != nil {
		return lookupError(err)
	}
	return c.JSON(http.StatusOK, state)
}

// submitFailure is returned instead of an error body so the client can put
// the submitted values back into the form.
type submitFailure struct {
	Message      string            `json:"message"`
	Errors       forms.FieldErrors `json:"errors,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
	Values       map[string]any    `json:"values"`
}

func (h *Handler) SubmitWorkspace(c echo.Context) error {
	var req workspaceRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	sess, err := auth.RequireSession(c)
	if err != nil {
		return err
	}

	var body submitBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	if err := c.Validate(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.Submit(c.Request().Context(), sess, req.Patient, req.Workspace, req.Encounter, body.Values)
	if err == nil {
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		return c.JSON(status, res)
	}

	var fieldErrs forms.FieldErrors
	switch {
	case errors.Is(err, forms.ErrUnknownWorkspace):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &fieldErrs):
		return c.JSON(http.StatusUnprocessableEntity, submitFailure{
			Message: "validation failed",
			Errors:  fieldErrs,
			Values:  body.Values,
		})
	case errors.Is(err, payload.ErrSubmissionInFlight):
		return c.JSON(http.StatusConflict, submitFailure{
			Message: err.Error(),
			Values:  body.Values,
		})
	case IsGatewayError(err):
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		n := saveFailedNotification(err)
		return c.JSON(status, submitFailure{
			Message:      err.Error(),
			Notification: &n,
			Values:       body.Values,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

type deleteResponse struct {
	Message      string       `json:"message,omitempty"`
	Notification Notification `json:"notification"`
}

func (h *Handler) DeleteEncounter(c echo.Context) error {
	var req deleteRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	sess, err := auth.RequireSession(c)
	if err != nil {
		return err
	}

	n, err := h.svc.Delete(c.Request().Context(), sess, req.Patient, req.Workspace, req.Encounter)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, deleteResponse{Notification: n})
	case errors.Is(err, forms.ErrUnknownWorkspace):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case IsGatewayError(err):
		status := http.StatusBadGateway
		if errors.Is(err, openmrs.ErrNotFound) {
			status = http.StatusNotFound
		}
		return c.JSON(status, deleteResponse{Message: err.Error(), Notification: n})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) ListSubmissions(c echo.Context) error {
	var req submissionsRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.Submissions(c.Request().Context(), req.Patient, pagination.FromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}
