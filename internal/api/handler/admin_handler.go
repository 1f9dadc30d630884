package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thynetwork/timeclock/internal/core/ports"
)

// AdminHandler serves the administrator dashboard, user management and the
// quote of the day.
type AdminHandler struct {
	dashboard ports.DashboardService
	users     ports.UserService
	quotes    ports.QuoteService
	loc       *time.Location
}

func NewAdminHandler(dashboard ports.DashboardService, users ports.UserService, quotes ports.QuoteService, loc *time.Location) *AdminHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AdminHandler{dashboard: dashboard, users: users, quotes: quotes, loc: loc}
}

// Stats handles GET /dashboard-stats.
//
// @Summary      Dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DashboardStats
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /dashboard-stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.dashboard.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /users.
//
// @Summary      List employees with their latest clock event
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   employeeResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	list, err := h.users.ListEmployees(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]employeeResponse, len(list))
	for i, e := range list {
		resp[i] = employeeResponse{User: e.User, LastEvent: e.LastEvent, Status: e.Status}
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateUser handles POST /users.
//
// @Summary      Create an employee
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEmployeeRequest  true  "Employee"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.users.CreateEmployee(c.Request().Context(), ports.CreateEmployeeInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// DeleteUser handles DELETE /users/:id.
//
// @Summary      Delete a user with all owned data
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == p.UserID {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete your own account")
	}

	if err := h.users.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

// GetQuote handles GET /admin/quote?date=.
//
// @Summary      Quote of the day
// @Tags         quote
// @Produce      json
// @Security     BearerAuth
// @Param        date  query     string  true  "Day (YYYY-MM-DD or RFC3339)"
// @Success      200   {object}  domain.QuoteOfTheDay
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/quote [get]
func (h *AdminHandler) GetQuote(c echo.Context) error {
	raw := c.QueryParam("date")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	date, err := parseInstant(raw, h.loc, false)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date: "+err.Error())
	}

	q, err := h.quotes.Get(c.Request().Context(), date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// SetQuote handles POST /admin/quote.
//
// @Summary      Set the quote of a day
// @Tags         quote
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      quoteRequest  true  "Quote"
// @Success      200   {object}  domain.QuoteOfTheDay
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/quote [post]
func (h *AdminHandler) SetQuote(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	date, err := parseInstant(req.Date, h.loc, false)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date: "+err.Error())
	}

	q, err := h.quotes.Set(c.Request().Context(), date, req.Quote, req.Author)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}
