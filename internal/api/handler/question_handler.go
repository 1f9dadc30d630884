package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thynetwork/timeclock/internal/api/metrics"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

// QuestionHandler serves the answer workflow and the read flags.
type QuestionHandler struct {
	questions ports.QuestionService
}

func NewQuestionHandler(questions ports.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// SubmitAnswers handles PATCH /questions/answer.
//
// @Summary      Answer employee questions
// @Description  Applies every entry independently. Unknown ids are reported in not_found, entries without an id or answer in invalid.
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []answerRequest  true  "Answers"
// @Success      200   {object}  answerBatchResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  answerBatchResponse
// @Failure      500   {object}  answerBatchResponse
// @Router       /questions/answer [patch]
func (h *QuestionHandler) SubmitAnswers(c echo.Context) error {
	var req []answerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(req) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no answers provided")
	}

	var invalid []int
	batch := make([]ports.AnswerInput, 0, len(req))
	for i := range req {
		req[i].QuestionID = strings.TrimSpace(req[i].QuestionID)
		req[i].Answer = strings.TrimSpace(req[i].Answer)
		if err := c.Validate(&req[i]); err != nil {
			invalid = append(invalid, i)
			continue
		}
		batch = append(batch, ports.AnswerInput{QuestionID: req[i].QuestionID, Answer: req[i].Answer})
	}
	metrics.AnswersTotal.WithLabelValues("invalid").Add(float64(len(invalid)))

	if len(batch) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, answerBatchResponse{
			Answered: []string{},
			NotFound: []string{},
			Invalid:  invalid,
		})
	}

	res, err := h.questions.SubmitAnswers(c.Request().Context(), batch)
	if res == nil {
		return err
	}

	metrics.AnswersTotal.WithLabelValues("answered").Add(float64(len(res.Answered)))
	metrics.AnswersTotal.WithLabelValues("not_found").Add(float64(len(res.NotFound)))
	metrics.AnswersTotal.WithLabelValues("failed").Add(float64(len(res.Failed)))

	body := answerBatchResponse{
		Answered: emptyIfNil(res.Answered),
		NotFound: emptyIfNil(res.NotFound),
		Failed:   res.Failed,
		Invalid:  invalid,
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, body)
	}
	return c.JSON(http.StatusOK, body)
}

// MarkMessageRead handles PATCH /messages/:id/read.
//
// @Summary      Mark a clock-out message as read
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /messages/{id}/read [patch]
func (h *QuestionHandler) MarkMessageRead(c echo.Context) error {
	if err := h.questions.MarkMessageRead(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "message marked as read"})
}

// MarkQuestionRead handles PATCH /questions/:id/read and its
// /notifications/user/:id/read alias.
//
// @Summary      Acknowledge an answered question
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Question ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /questions/{id}/read [patch]
func (h *QuestionHandler) MarkQuestionRead(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.questions.MarkQuestionReadByUser(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "question marked as read"})
}

// AcknowledgeAll handles POST /notifications/user/read.
//
// @Summary      Acknowledge every unread answer of the caller
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  acknowledgeResponse
// @Failure      401  {object}  errorResponse
// @Router       /notifications/user/read [post]
func (h *QuestionHandler) AcknowledgeAll(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	n, err := h.questions.AcknowledgeAnswers(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acknowledgeResponse{Acknowledged: n})
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
