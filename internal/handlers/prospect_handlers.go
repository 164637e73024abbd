package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/services"
)

// ProspectHandlers handles HTTP requests for the sales pipeline
type ProspectHandlers struct {
	prospects services.ProspectService
}

func NewProspectHandlers(prospects services.ProspectService) *ProspectHandlers {
	return &ProspectHandlers{prospects: prospects}
}

type ChangeStageRequest struct {
	Stage models.ProspectStage `json:"stage"`
}

// AssignOwnerRequest clears the owner when OwnerID is empty.
type AssignOwnerRequest struct {
	OwnerID string `json:"owner_id"`
}

type SetIndustryRequest struct {
	Industry string `json:"industry"`
}

// ListProspects lists live prospects, optionally filtered by search text, stage and function.
func (h *ProspectHandlers) ListProspects(c echo.Context) error {
	filter := models.ProspectFilter{
		Search:   c.QueryParam("search"),
		Stage:    models.ProspectStage(c.QueryParam("stage")),
		Function: models.ProspectFunction(c.QueryParam("function")),
	}
	prospects, err := h.prospects.List(c.Request().Context(), scopeOf(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prospects)
}

func (h *ProspectHandlers) GetProspect(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	prospect, err := h.prospects.Get(c.Request().Context(), scopeOf(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prospect)
}

func (h *ProspectHandlers) CreateProspect(c echo.Context) error {
	var in models.ProspectInput
	if err := bind(c, &in); err != nil {
		return err
	}
	prospect, err := h.prospects.Create(c.Request().Context(), scopeOf(c), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, prospect)
}

func (h *ProspectHandlers) UpdateProspect(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in models.ProspectInput
	if err := bind(c, &in); err != nil {
		return err
	}
	prospect, err := h.prospects.Update(c.Request().Context(), scopeOf(c), id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prospect)
}

func (h *ProspectHandlers) DeleteProspect(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.prospects.Delete(c.Request().Context(), scopeOf(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProspectHandlers) ChangeStage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ChangeStageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if !req.Stage.Valid() {
		return common.SendValidationError(c, "stage", "is not a pipeline stage")
	}
	if err := h.prospects.ChangeStage(c.Request().Context(), scopeOf(c), id, req.Stage); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProspectHandlers) AssignOwner(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AssignOwnerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var ownerID *uuid.UUID
	if req.OwnerID != "" {
		parsed, err := common.ValidateUUID(req.OwnerID, "owner_id")
		if err != nil {
			return err
		}
		ownerID = &parsed
	}
	if err := h.prospects.AssignOwner(c.Request().Context(), scopeOf(c), id, ownerID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProspectHandlers) SetIndustry(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req SetIndustryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.prospects.SetIndustry(c.Request().Context(), scopeOf(c), id, req.Industry); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListDeadLeads lists closed-lost prospects.
func (h *ProspectHandlers) ListDeadLeads(c echo.Context) error {
	prospects, err := h.prospects.ListDeadLeads(c.Request().Context(), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prospects)
}

func (h *ProspectHandlers) Revive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.prospects.Revive(c.Request().Context(), scopeOf(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMeetings backs the calendar view.
func (h *ProspectHandlers) ListMeetings(c echo.Context) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return err
	}
	prospects, err := h.prospects.ListMeetings(c.Request().Context(), scopeOf(c), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prospects)
}

// Industries returns the fixed industry list for pickers.
func (h *ProspectHandlers) Industries(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Industries)
}
