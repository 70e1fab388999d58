package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nuvie/records/internal/platform/auth"
	"github.com/nuvie/records/pkg/pagination"
)

const invalidLoginMessage = "Incorrect email or password"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts sign-up and login on public and everything else on
// the authenticated group.
func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/users", h.CreateUser)
	public.POST("/login/access-token", h.Login)

	protected.POST("/login/logout", h.Logout)
	protected.GET("/users", h.ListUsers)
	protected.GET("/users/:id", h.GetUser)
	protected.DELETE("/users/:id", h.DeleteUser)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.CreateUser(c.Request().Context(), req)
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrDuplicateUserName), errors.As(err, &vErr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Skip)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total))
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Login(c echo.Context) error {
	username, password := c.FormValue("username"), c.FormValue("password")
	if username == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	tok, err := h.svc.Login(c.Request().Context(), username, password)
	switch {
	case errors.Is(err, ErrUnknownUser):
		return echo.NewHTTPError(http.StatusBadRequest, invalidLoginMessage)
	case errors.Is(err, ErrWrongPassword):
		return echo.NewHTTPError(http.StatusForbidden, invalidLoginMessage)
	case errors.Is(err, ErrInactive):
		return echo.NewHTTPError(http.StatusBadRequest, "Inactive user")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}

	auth.SetTokenCookie(c, tok.AccessToken)
	return c.JSON(http.StatusOK, tok)
}

func (h *Handler) Logout(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if err := h.svc.Logout(c.Request().Context(), claims); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed").SetInternal(err)
	}
	auth.ClearTokenCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func toHTTPError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
}
