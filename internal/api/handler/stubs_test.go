package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, email, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, login, password string) (string, *domain.User, error)
	changeFn   func(ctx context.Context, userID, password string) error
}

func (s *stubAuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, login, password)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, password string) error {
	return s.changeFn(ctx, userID, password)
}

type stubAttendance struct {
	transitionFn func(ctx context.Context, userID, requestedType string) (*domain.ClockEvent, error)
	clockOutFn   func(ctx context.Context, in ports.ClockOutInput) (*ports.ClockOutResult, error)
	statusFn     func(ctx context.Context, userID string) (*ports.StatusResult, error)
	activityFn   func(ctx context.Context, userID string, from, to time.Time) ([]ports.ActivityItem, error)
}

func (s *stubAttendance) RequestTransition(ctx context.Context, userID, requestedType string) (*domain.ClockEvent, error) {
	return s.transitionFn(ctx, userID, requestedType)
}

func (s *stubAttendance) RecordClockOut(ctx context.Context, in ports.ClockOutInput) (*ports.ClockOutResult, error) {
	return s.clockOutFn(ctx, in)
}

func (s *stubAttendance) CurrentStatus(ctx context.Context, userID string) (*ports.StatusResult, error) {
	return s.statusFn(ctx, userID)
}

func (s *stubAttendance) ListActivity(ctx context.Context, userID string, from, to time.Time) ([]ports.ActivityItem, error) {
	return s.activityFn(ctx, userID, from, to)
}

type stubQuestionService struct {
	submitFn      func(ctx context.Context, batch []ports.AnswerInput) (*ports.AnswerBatchResult, error)
	messageReadFn func(ctx context.Context, messageID string) error
	questionFn    func(ctx context.Context, caller domain.Principal, questionID string) error
	ackFn         func(ctx context.Context, userID string) (int, error)
}

func (s *stubQuestionService) SubmitAnswers(ctx context.Context, batch []ports.AnswerInput) (*ports.AnswerBatchResult, error) {
	return s.submitFn(ctx, batch)
}

func (s *stubQuestionService) MarkMessageRead(ctx context.Context, messageID string) error {
	return s.messageReadFn(ctx, messageID)
}

func (s *stubQuestionService) MarkQuestionReadByUser(ctx context.Context, caller domain.Principal, questionID string) error {
	return s.questionFn(ctx, caller, questionID)
}

func (s *stubQuestionService) AcknowledgeAnswers(ctx context.Context, userID string) (int, error) {
	return s.ackFn(ctx, userID)
}

type stubNotificationService struct {
	adminFn    func(ctx context.Context) ([]domain.AdminNotification, error)
	employeeFn func(ctx context.Context, userID string) ([]domain.EmployeeNotification, error)
}

func (s *stubNotificationService) ListAdminNotifications(ctx context.Context) ([]domain.AdminNotification, error) {
	return s.adminFn(ctx)
}

func (s *stubNotificationService) ListEmployeeNotifications(ctx context.Context, userID string) ([]domain.EmployeeNotification, error) {
	return s.employeeFn(ctx, userID)
}

type stubDashboard struct {
	statsFn func(ctx context.Context) (*domain.DashboardStats, error)
}

func (s *stubDashboard) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	return s.statsFn(ctx)
}

type stubUserService struct {
	listFn   func(ctx context.Context) ([]ports.EmployeeSummary, error)
	createFn func(ctx context.Context, in ports.CreateEmployeeInput) (*domain.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubUserService) ListEmployees(ctx context.Context) ([]ports.EmployeeSummary, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) CreateEmployee(ctx context.Context, in ports.CreateEmployeeInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubQuoteService struct {
	getFn func(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error)
	setFn func(ctx context.Context, date time.Time, quote, author string) (*domain.QuoteOfTheDay, error)
}

func (s *stubQuoteService) Get(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error) {
	return s.getFn(ctx, date)
}

func (s *stubQuoteService) Set(ctx context.Context, date time.Time, quote, author string) (*domain.QuoteOfTheDay, error) {
	return s.setFn(ctx, date, quote, author)
}

// newContext builds an echo context with the validator installed and, when
// role is non-empty, the claims the Auth middleware would set.
func newContext(method, target string, body io.Reader, userID string, role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("user_id", userID)
		c.Set("username", userID)
		c.Set("role", string(role))
	}
	return c, rec
}

// httpCode returns the status carried by an echo.HTTPError, or 0.
func httpCode(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}
