package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/services"
)

// ActivityHandlers serves the activity log and the dashboard.
type ActivityHandlers struct {
	activity  services.ActivityService
	dashboard services.DashboardService
}

func NewActivityHandlers(activity services.ActivityService, dashboard services.DashboardService) *ActivityHandlers {
	return &ActivityHandlers{activity: activity, dashboard: dashboard}
}

// ListActivity supports ?prospect_id=, ?type=, ?limit= and ?offset=.
func (h *ActivityHandlers) ListActivity(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	filter := models.ActivityFilter{
		ActionType: models.ActivityType(c.QueryParam("type")),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := c.QueryParam("prospect_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "prospect_id")
		if err != nil {
			return err
		}
		filter.ProspectID = &id
	}

	records, err := h.activity.List(c.Request().Context(), scopeOf(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// ProspectActivity lists the history of a single prospect.
func (h *ActivityHandlers) ProspectActivity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	records, err := h.activity.List(c.Request().Context(), scopeOf(c), models.ActivityFilter{
		ProspectID: &id,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// Dashboard never fails: sections whose query failed come back empty and named in warnings.
func (h *ActivityHandlers) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dashboard.Summary(c.Request().Context(), scopeOf(c)))
}
