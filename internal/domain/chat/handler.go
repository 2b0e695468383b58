package chat

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lifeline/lifeline/pkg/fault"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/chat", h.Send)
}

func (h *Handler) Send(c echo.Context) error {
	var p Prompt
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reply, err := h.svc.Send(c.Request().Context(), p.Message, p.History)
	if err != nil {
		if fault.KindOf(err) == fault.KindValidation {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reply)
}
