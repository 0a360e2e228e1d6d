package api

import (
	"errors"
	"net/http"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type quizRoutes struct {
	qs service.QuizServiceI
}

func NewQuizRoutes(handler *gin.RouterGroup, qs service.QuizServiceI, feedbackLimiter gin.HandlerFunc) {
	h := &quizRoutes{qs: qs}

	quiz := handler.Group("/quiz")
	{
		quiz.GET("/questions", h.GetQuestions)
		quiz.POST("/submit", h.SubmitQuiz)
		quiz.GET("/results", h.GetResults)
		quiz.POST("/feedback", feedbackLimiter, h.GetFeedback)
	}
}

type answerResponse struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	OrderIndex int    `json:"order_index"`
}

type questionResponse struct {
	ID         string           `json:"id"`
	Text       string           `json:"text"`
	OrderIndex int              `json:"order_index"`
	Answers    []answerResponse `json:"answers"`
}

// GetQuestions returns the active question set without correctness flags.
func (h *quizRoutes) GetQuestions(c *gin.Context) {
	protocolID := c.Query("protocol")
	if protocolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "protocol is required"})
		return
	}

	questions, err := h.qs.Questions(c.Request.Context(), protocolID)
	if err != nil {
		if errors.Is(err, service.ErrProtocolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "protocol not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get questions"})
		return
	}

	response := make([]questionResponse, len(questions))
	for i, q := range questions {
		answers := make([]answerResponse, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = answerResponse{
				ID:         a.ID.String(),
				Text:       a.Text,
				OrderIndex: a.OrderIndex,
			}
		}
		response[i] = questionResponse{
			ID:         q.ID.String(),
			Text:       q.Text,
			OrderIndex: q.OrderIndex,
			Answers:    answers,
		}
	}

	c.JSON(http.StatusOK, response)
}

type submitRequest struct {
	ProtocolID         string            `json:"protocol_id" binding:"required"`
	Answers            map[string]string `json:"answers" binding:"required"`
	StartTime          *int64            `json:"start_time"`
	EndTime            *int64            `json:"end_time"`
	VerificationMethod *string           `json:"verification_method"`
	WalletAddress      *string           `json:"wallet_address"`
	Email              *string           `json:"email"`
}

type submitResponse struct {
	Token     string `json:"token"`
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	Passed    bool   `json:"passed"`
	ExpiresAt int64  `json:"expires_at"`
}

func (h *quizRoutes) SubmitQuiz(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Answers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers are required"})
		return
	}
	if req.StartTime != nil && req.EndTime != nil && *req.EndTime < *req.StartTime {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time precedes start_time"})
		return
	}

	result, err := h.qs.SubmitQuiz(c.Request.Context(), &service.SubmitRequest{
		ProtocolID:         req.ProtocolID,
		Answers:            req.Answers,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		VerificationMethod: req.VerificationMethod,
		WalletAddress:      req.WalletAddress,
		Email:              req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProtocolNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "protocol not found"})
		case errors.Is(err, service.ErrNoQuestions):
			c.JSON(http.StatusNotFound, gin.H{"error": "no questions found for protocol"})
		case errors.Is(err, service.ErrIncompleteSubmission):
			c.JSON(http.StatusBadRequest, gin.H{"error": "all questions must be answered"})
		case errors.Is(err, service.ErrTooFast):
			c.JSON(http.StatusBadRequest, gin.H{"error": "quiz answered too quickly"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit quiz"})
		}
		return
	}

	c.JSON(http.StatusOK, submitResponse{
		Token:     result.Token,
		Score:     result.Score,
		Total:     result.Total,
		Passed:    result.Passed,
		ExpiresAt: result.ExpiresAt.Unix(),
	})
}

type resultsResponse struct {
	Score              int     `json:"score"`
	Total              int     `json:"total"`
	Passed             bool    `json:"passed"`
	SecretWord         *string `json:"secret_word,omitempty"`
	ProtocolName       string  `json:"protocol_name"`
	VerificationMethod *string `json:"verification_method,omitempty"`
}

func (h *quizRoutes) GetResults(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	results, err := h.qs.Results(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get results"})
		return
	}

	c.JSON(http.StatusOK, resultsResponse{
		Score:              results.Score,
		Total:              results.Total,
		Passed:             results.Passed,
		SecretWord:         results.SecretWord,
		ProtocolName:       results.ProtocolName,
		VerificationMethod: results.VerificationMethod,
	})
}

type feedbackRequest struct {
	ProtocolID string `json:"protocol_id" binding:"required"`
	QuestionID string `json:"question_id" binding:"required"`
	AnswerID   string `json:"answer_id" binding:"required"`
}

type feedbackResponse struct {
	IsCorrect         bool    `json:"is_correct"`
	Explanation       *string `json:"explanation,omitempty"`
	CorrectAnswerID   string  `json:"correct_answer_id"`
	CorrectAnswerText string  `json:"correct_answer_text"`
}

// GetFeedback grades one answer mid-quiz. Sits behind a per-IP rate
// limiter so it cannot be used to enumerate the answer key quickly.
func (h *quizRoutes) GetFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question_id"})
		return
	}
	answerID, err := uuid.Parse(req.AnswerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid answer_id"})
		return
	}

	feedback, err := h.qs.Feedback(c.Request.Context(), req.ProtocolID, questionID, answerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProtocolNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "protocol not found"})
		case errors.Is(err, service.ErrQuestionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		case errors.Is(err, service.ErrAnswerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "answer not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get feedback"})
		}
		return
	}

	c.JSON(http.StatusOK, feedbackResponse{
		IsCorrect:         feedback.IsCorrect,
		Explanation:       feedback.QuestionExplanation,
		CorrectAnswerID:   feedback.CorrectAnswerID.String(),
		CorrectAnswerText: feedback.CorrectAnswerText,
	})
}

// claimView is shared by the public verify endpoint and admin claim listing.
type claimView struct {
	ProtocolID    string  `json:"protocol_id"`
	WalletAddress string  `json:"wallet_address"`
	Score         int     `json:"score"`
	Passed        bool    `json:"passed"`
	EventID       int64   `json:"event_id"`
	ClaimCode     *string `json:"claim_code,omitempty"`
	ClaimURL      *string `json:"claim_url,omitempty"`
	Claimed       bool    `json:"claimed"`
	CompletedAt   int64   `json:"completed_at"`
	ClaimedAt     *int64  `json:"claimed_at,omitempty"`
}

func toClaimViews(claims []*model.Claim) []claimView {
	views := make([]claimView, len(claims))
	for i, cl := range claims {
		var claimedAt *int64
		if cl.ClaimedAt != nil {
			unix := cl.ClaimedAt.Unix()
			claimedAt = &unix
		}
		views[i] = claimView{
			ProtocolID:    cl.ProtocolID,
			WalletAddress: cl.WalletAddress,
			Score:         cl.Score,
			Passed:        cl.Passed,
			EventID:       cl.EventID,
			ClaimCode:     cl.ClaimCode,
			ClaimURL:      cl.ClaimURL,
			Claimed:       cl.Claimed,
			CompletedAt:   cl.CompletedAt.Unix(),
			ClaimedAt:     claimedAt,
		}
	}
	return views
}
