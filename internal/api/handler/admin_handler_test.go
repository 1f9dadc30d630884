package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

func newAdminHandler(users *stubUserService, quotes *stubQuoteService, loc *time.Location) *AdminHandler {
	dash := &stubDashboard{statsFn: func(ctx context.Context) (*domain.DashboardStats, error) {
		return &domain.DashboardStats{ActiveUsers: 3, OnBreak: 1, ClockedInToday: 4}, nil
	}}
	if users == nil {
		users = &stubUserService{}
	}
	if quotes == nil {
		quotes = &stubQuoteService{}
	}
	return NewAdminHandler(dash, users, quotes, loc)
}

func TestAdminHandler_Stats(t *testing.T) {
	handler := newAdminHandler(nil, nil, time.UTC)

	c, rec := newContext(http.MethodGet, "/dashboard-stats", nil, "admin-1", domain.RoleAdmin)
	if err := handler.Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp domain.DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ActiveUsers != 3 || resp.OnBreak != 1 || resp.ClockedInToday != 4 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	last := &domain.ClockEvent{ID: "e-1", UserID: "u-1", Type: domain.KindIn, Timestamp: testNow}
	users := &stubUserService{listFn: func(ctx context.Context) ([]ports.EmployeeSummary, error) {
		return []ports.EmployeeSummary{
			{User: domain.User{ID: "u-1", Username: "alice", Role: domain.RoleEmployee}, LastEvent: last, Status: domain.StatusClockedIn},
			{User: domain.User{ID: "u-2", Username: "bob", Role: domain.RoleEmployee}, Status: domain.StatusClockedOut},
		}, nil
	}}
	handler := newAdminHandler(users, nil, time.UTC)

	c, rec := newContext(http.MethodGet, "/users", nil, "admin-1", domain.RoleAdmin)
	if err := handler.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 users, got %d", len(resp))
	}
	if resp[0]["username"] != "alice" || resp[0]["status"] != "Clocked In" {
		t.Fatalf("user fields must be flattened, got %+v", resp[0])
	}
	if resp[1]["last_event"] != nil {
		t.Fatalf("expected null last_event, got %v", resp[1]["last_event"])
	}
}

func TestAdminHandler_CreateUser(t *testing.T) {
	var got ports.CreateEmployeeInput
	users := &stubUserService{createFn: func(ctx context.Context, in ports.CreateEmployeeInput) (*domain.User, error) {
		got = in
		return &domain.User{ID: "u-3", Username: in.Username, Role: domain.RoleEmployee}, nil
	}}
	handler := newAdminHandler(users, nil, time.UTC)

	body := `{"first_name":"Carol","last_name":"Diaz","username":"carol","email":"c@example.com","password":"1234"}`
	c, rec := newContext(http.MethodPost, "/users", strings.NewReader(body), "admin-1", domain.RoleAdmin)
	if err := handler.CreateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.FirstName != "Carol" || got.Username != "carol" || got.Password != "1234" {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestAdminHandler_CreateUser_ShortPIN(t *testing.T) {
	handler := newAdminHandler(nil, nil, time.UTC)

	body := `{"username":"carol","email":"c@example.com","password":"12"}`
	c, _ := newContext(http.MethodPost, "/users", strings.NewReader(body), "admin-1", domain.RoleAdmin)
	if code := httpCode(handler.CreateUser(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestAdminHandler_DeleteUser(t *testing.T) {
	var deleted string
	users := &stubUserService{deleteFn: func(ctx context.Context, id string) error {
		deleted = id
		return nil
	}}
	handler := newAdminHandler(users, nil, time.UTC)

	c, rec := newContext(http.MethodDelete, "/users/u-1", nil, "admin-1", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("u-1")
	if err := handler.DeleteUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || deleted != "u-1" {
		t.Fatalf("expected u-1 deleted, got %q (%d)", deleted, rec.Code)
	}
}

func TestAdminHandler_DeleteUser_Self(t *testing.T) {
	handler := newAdminHandler(nil, nil, time.UTC)

	c, _ := newContext(http.MethodDelete, "/users/admin-1", nil, "admin-1", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("admin-1")
	if code := httpCode(handler.DeleteUser(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAdminHandler_DeleteUser_NotFound(t *testing.T) {
	users := &stubUserService{deleteFn: func(ctx context.Context, id string) error {
		return domain.ErrUserNotFound
	}}
	handler := newAdminHandler(users, nil, time.UTC)

	c, _ := newContext(http.MethodDelete, "/users/ghost", nil, "admin-1", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	if err := handler.DeleteUser(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminHandler_GetQuote(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*3600)
	var asked time.Time
	quotes := &stubQuoteService{getFn: func(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error) {
		asked = date
		return &domain.QuoteOfTheDay{ID: "qt-1", Date: date, Quote: "Keep going", Author: "Anon"}, nil
	}}
	handler := newAdminHandler(nil, quotes, loc)

	c, rec := newContext(http.MethodGet, "/admin/quote?date=2026-03-02", nil, "admin-1", domain.RoleAdmin)
	if err := handler.GetQuote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !asked.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, loc)) {
		t.Fatalf("date must be read in the configured zone, got %v", asked)
	}
}

func TestAdminHandler_GetQuote_MissingDate(t *testing.T) {
	handler := newAdminHandler(nil, nil, time.UTC)

	c, _ := newContext(http.MethodGet, "/admin/quote", nil, "admin-1", domain.RoleAdmin)
	if code := httpCode(handler.GetQuote(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAdminHandler_GetQuote_NotFound(t *testing.T) {
	quotes := &stubQuoteService{getFn: func(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error) {
		return nil, domain.ErrQuoteNotFound
	}}
	handler := newAdminHandler(nil, quotes, time.UTC)

	c, _ := newContext(http.MethodGet, "/admin/quote?date=2026-03-02", nil, "admin-1", domain.RoleAdmin)
	if err := handler.GetQuote(c); !errors.Is(err, domain.ErrQuoteNotFound) {
		t.Fatalf("expected ErrQuoteNotFound, got %v", err)
	}
}

func TestAdminHandler_SetQuote(t *testing.T) {
	var gotQuote, gotAuthor string
	quotes := &stubQuoteService{setFn: func(ctx context.Context, date time.Time, quote, author string) (*domain.QuoteOfTheDay, error) {
		gotQuote, gotAuthor = quote, author
		return &domain.QuoteOfTheDay{ID: "qt-1", Date: date, Quote: quote, Author: author}, nil
	}}
	handler := newAdminHandler(nil, quotes, time.UTC)

	body := `{"quote":"Ship it","author":"Grace","date":"2026-03-02"}`
	c, rec := newContext(http.MethodPost, "/admin/quote", strings.NewReader(body), "admin-1", domain.RoleAdmin)
	if err := handler.SetQuote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || gotQuote != "Ship it" || gotAuthor != "Grace" {
		t.Fatalf("unexpected result %d %q %q", rec.Code, gotQuote, gotAuthor)
	}
}

func TestAdminHandler_SetQuote_Validation(t *testing.T) {
	handler := newAdminHandler(nil, nil, time.UTC)

	tests := []struct {
		body string
		code int
	}{
		{`{"author":"x","date":"2026-03-02"}`, http.StatusUnprocessableEntity},
		{`{"quote":"q","date":"March 2nd"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		c, _ := newContext(http.MethodPost, "/admin/quote", strings.NewReader(tc.body), "admin-1", domain.RoleAdmin)
		if code := httpCode(handler.SetQuote(c)); code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.body, tc.code, code)
		}
	}
}
