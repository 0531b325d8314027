package diagnosis

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/namaste/internal/domain/terminology"
	"github.com/ehr/namaste/internal/platform/auth"
	"github.com/ehr/namaste/pkg/pagination"
)

// defaultSeverity is applied when the form leaves severity unset.
const defaultSeverity = SeverityModerate

// EntryResolver canonicalises the entry a client selected and refuses
// entries it cannot vouch for. *terminology.Service satisfies it.
type EntryResolver interface {
	Resolve(ctx context.Context, selected terminology.Entry) (terminology.Entry, error)
}

type Handler struct {
	builder *Builder
	coord   *Coordinator
	store   Store
	terms   EntryResolver
}

func NewHandler(builder *Builder, coord *Coordinator, store Store, terms EntryResolver) *Handler {
	return &Handler{builder: builder, coord: coord, store: store, terms: terms}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients/:patientID/diagnoses")
	g.POST("", h.Create, auth.RequireRole(auth.RoleDoctor))
	g.GET("", h.List, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
}

type createRequest struct {
	Entry             *terminology.Entry `json:"entry"`
	Severity          string             `json:"severity" validate:"omitempty,max=32"`
	TreatmentApproach string             `json:"treatment_approach" validate:"omitempty,max=64"`
	Notes             string             `json:"notes" validate:"max=4000"`
	HospitalID        *uuid.UUID         `json:"hospital_id"`
}

type commitResponse struct {
	Status        CommitStatus `json:"status"`
	Diagnosis     *Record      `json:"diagnosis,omitempty"`
	MirrorMessage string       `json:"mirror_message,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Retry         bool         `json:"retry,omitempty"`
}

// Create handles POST /api/v1/patients/:patientID/diagnoses
func (h *Handler) Create(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := BuildInput{
		PatientID:         patientID,
		ClinicianID:       p.ID,
		FacilityID:        req.HospitalID,
		Severity:          req.Severity,
		TreatmentApproach: req.TreatmentApproach,
		Notes:             req.Notes,
	}
	if in.Severity == "" {
		in.Severity = string(defaultSeverity)
	}
	if in.FacilityID == nil {
		in.FacilityID = p.FacilityID
	}
	if req.Entry != nil {
		entry, err := h.terms.Resolve(c.Request().Context(), *req.Entry)
		switch {
		case errors.Is(err, terminology.ErrIncompleteEntry):
			return validationFailed(c, &ValidationError{Reason: ReasonIncompleteEntry, Detail: req.Entry.ID})
		case errors.Is(err, terminology.ErrUnverifiedEntry):
			return validationFailed(c, &ValidationError{Reason: ReasonUnverifiedEntry, Detail: req.Entry.ID})
		case err != nil:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "entry verification did not complete")
		}
		in.Selected = &entry
	}

	rec, err := h.builder.Build(in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return validationFailed(c, verr)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.coord.Commit(c.Request().Context(), rec)
	if result.Status == Rejected {
		code := http.StatusServiceUnavailable
		switch {
		case errors.Is(result.Err, ErrUnknownPatient):
			code = http.StatusNotFound
		case errors.Is(result.Err, ErrUnknownReference):
			code = http.StatusUnprocessableEntity
		}
		return c.JSON(code, commitResponse{
			Status: result.Status,
			Reason: result.Reason,
			Retry:  result.Retry,
		})
	}
	return c.JSON(http.StatusCreated, commitResponse{
		Status:        result.Status,
		Diagnosis:     rec,
		MirrorMessage: result.MirrorMessage,
	})
}

func validationFailed(c echo.Context, verr *ValidationError) error {
	return c.JSON(http.StatusUnprocessableEntity, map[string]string{
		"error":  verr.Error(),
		"reason": string(verr.Reason),
	})
}

// List handles GET /api/v1/patients/:patientID/diagnoses
func (h *Handler) List(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	page := pagination.FromContext(c)
	records, total, err := h.store.ListByPatient(c.Request().Context(), patientID, page)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load problem list")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, page))
}
