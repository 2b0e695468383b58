package compat

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/compatibility/:type", h.Lookup)
}

// Lookup returns one side of the compatibility relation for a blood type.
// Direction defaults to canReceiveFrom, the common "who can donate to this
// patient" question.
func (h *Handler) Lookup(c echo.Context) error {
	bt, err := ParseBloodType(c.Param("type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dirParam := c.QueryParam("direction")
	if dirParam == "" {
		dirParam = string(CanReceiveFrom)
	}
	dir, ok := ParseDirection(dirParam)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "direction must be canDonateTo or canReceiveFrom")
	}
	types, err := Compatibility(bt, dir)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"blood_type":       bt,
		"direction":        dir,
		"compatible_types": types,
	})
}
