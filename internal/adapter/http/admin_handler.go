package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"worklog-backend/internal/adapter/middleware"
	ucapproval "worklog-backend/internal/usecase/approval"
)

type AdminHandler struct {
	uc       *ucapproval.Usecase
	sessions *middleware.Store
}

func NewAdminHandler(uc *ucapproval.Usecase, sessions *middleware.Store) *AdminHandler {
	return &AdminHandler{uc: uc, sessions: sessions}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verdictReq struct {
	Verdict string `json:"verdict" validate:"required,oneof=approved rejected"`
}

func (h *AdminHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	actor, err := h.uc.Authenticate(req.Username, req.Password)
	if err != nil {
		return domainError(c, err)
	}
	token, err := h.sessions.Create(c.Request().Context(), actor)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "session store unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token, "actor_id": actor})
}

func (h *AdminHandler) Logout(c echo.Context) error {
	token := c.Request().Header.Get(middleware.TokenHeader)
	if err := h.sessions.Destroy(c.Request().Context(), token); err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "session store unavailable"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) Verdict(c echo.Context) error {
	row, err := rowParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid row param"})
	}
	var req verdictReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	sess := middleware.SessionFrom(c)
	dto, err := h.uc.Decide(c.Request().Context(), ucapproval.VerdictInput{
		Row:     row,
		ActorID: sess.ActorID,
		Verdict: req.Verdict,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) Delete(c echo.Context) error {
	row, err := rowParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid row param"})
	}
	if err := h.uc.Delete(c.Request().Context(), row); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func rowParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("row"))
}
