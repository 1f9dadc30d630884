package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thynetwork/timeclock/internal/api/metrics"
	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

const dateLayout = "2006-01-02"

// ClockHandler serves the employee clock endpoints.
type ClockHandler struct {
	attendance ports.AttendanceService
	loc        *time.Location
}

// NewClockHandler creates a ClockHandler. loc is used to interpret plain
// YYYY-MM-DD dates in activity queries.
func NewClockHandler(attendance ports.AttendanceService, loc *time.Location) *ClockHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ClockHandler{attendance: attendance, loc: loc}
}

// Clock handles POST /clock.
//
// @Summary      Record a clock action
// @Description  Appends IN, OUT, BREAK_START or BREAK_END for the caller. An OUT may carry a summary message and questions.
// @Tags         clock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      clockRequest  true  "Clock action"
// @Success      201   {object}  clockResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  partialWriteResponse
// @Router       /clock [post]
func (h *ClockHandler) Clock(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req clockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	kind, err := domain.ParseEventKind(req.Type)
	if err != nil {
		metrics.ClockRejectionsTotal.WithLabelValues("invalid_kind").Inc()
		return err
	}

	ctx := c.Request().Context()

	if kind != domain.KindOut {
		ev, err := h.attendance.RequestTransition(ctx, p.UserID, string(kind))
		if err != nil {
			recordRejection(err)
			return err
		}
		metrics.ClockTransitionsTotal.WithLabelValues(string(ev.Type)).Inc()
		return c.JSON(http.StatusCreated, clockResponse{Event: *ev})
	}

	in := ports.ClockOutInput{
		UserID:    p.UserID,
		Summary:   strings.TrimSpace(req.Message),
		Questions: nonBlank(req.Questions),
	}
	res, err := h.attendance.RecordClockOut(ctx, in)
	if err != nil {
		recordRejection(err)
		if errors.Is(err, domain.ErrPartialWrite) && res != nil {
			metrics.ClockTransitionsTotal.WithLabelValues(string(domain.KindOut)).Inc()
			return c.JSON(http.StatusInternalServerError, partialWriteResponse{
				Error: domain.ErrPartialWrite.Error(),
				Event: res.Event,
			})
		}
		return err
	}

	metrics.ClockTransitionsTotal.WithLabelValues(string(domain.KindOut)).Inc()
	metrics.ClockOutAnnexTotal.WithLabelValues(annexKind(res)).Inc()

	return c.JSON(http.StatusCreated, clockResponse{
		Event:     res.Event,
		Message:   res.Message,
		Questions: res.Questions,
	})
}

// Status handles GET /clock/status.
//
// @Summary      Current attendance status
// @Tags         clock
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  errorResponse
// @Router       /clock/status [get]
func (h *ClockHandler) Status(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	st, err := h.attendance.CurrentStatus(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{
		Status:      st.Status,
		LastEvent:   st.LastEvent,
		AllowedNext: st.AllowedNext,
	})
}

// Activity handles GET /activity?from=&to=.
//
// @Summary      Clock history of the caller
// @Description  from and to accept RFC3339 timestamps or YYYY-MM-DD dates. A date in "to" covers the whole day.
// @Tags         clock
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  true  "Range start"
// @Param        to    query     string  true  "Range end"
// @Success      200   {array}   activityItemResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /activity [get]
func (h *ClockHandler) Activity(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	rawFrom, rawTo := c.QueryParam("from"), c.QueryParam("to")
	if rawFrom == "" || rawTo == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "from and to are required")
	}
	from, err := parseInstant(rawFrom, h.loc, false)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from: "+err.Error())
	}
	to, err := parseInstant(rawTo, h.loc, true)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to: "+err.Error())
	}

	items, err := h.attendance.ListActivity(c.Request().Context(), p.UserID, from, to)
	if err != nil {
		return err
	}

	resp := make([]activityItemResponse, len(items))
	for i, it := range items {
		resp[i] = activityItemResponse{
			ID:        it.Event.ID,
			Type:      it.Event.Type,
			Timestamp: it.Event.Timestamp,
		}
		if it.Message != "" {
			resp[i].Message = &activityMessage{Content: it.Message}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// parseInstant accepts RFC3339 or a calendar date in loc. With endOfDay a
// calendar date resolves to the last nanosecond of that day.
func parseInstant(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, errors.New("expected RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return d, nil
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func annexKind(res *ports.ClockOutResult) string {
	switch {
	case len(res.Questions) > 0:
		return "questions"
	case res.Message != nil:
		return "summary"
	default:
		return "none"
	}
}

func recordRejection(err error) {
	reason := "error"
	switch {
	case errors.Is(err, domain.ErrIllegalTransition):
		reason = "illegal_transition"
	case errors.Is(err, domain.ErrClockBusy):
		reason = "busy"
	case errors.Is(err, domain.ErrPartialWrite):
		reason = "partial_write"
	case errors.Is(err, domain.ErrInvalidEventKind):
		reason = "invalid_kind"
	}
	metrics.ClockRejectionsTotal.WithLabelValues(reason).Inc()
}
