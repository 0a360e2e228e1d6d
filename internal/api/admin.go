package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"poap_quiz_backend/internal/middleware"
	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type adminRoutes struct {
	registry service.RegistryServiceI
	drops    service.DropServiceI
}

func NewAdminRoutes(handler *gin.RouterGroup, registry service.RegistryServiceI, drops service.DropServiceI, adminSecret string) {
	h := &adminRoutes{registry: registry, drops: drops}

	admin := handler.Group("/admin")
	admin.Use(middleware.AdminSecret(adminSecret))
	{
		admin.GET("/protocols", h.ListProtocols)
		admin.POST("/protocols", h.CreateProtocol)
		admin.GET("/protocols/:id", h.GetProtocol)
		admin.PATCH("/protocols/:id", h.UpdateProtocol)
		admin.DELETE("/protocols/:id", h.DeleteProtocol)
		admin.GET("/protocols/:id/questions", h.ListQuestions)

		admin.POST("/questions", h.CreateQuestion)
		admin.PUT("/questions/:id", h.UpdateQuestion)
		admin.PATCH("/questions/:id/status", h.SetQuestionStatus)
		admin.DELETE("/questions/:id", h.DeleteQuestion)

		admin.POST("/drops", h.CreateDrop)
		admin.GET("/drops", h.ListDrops)
		admin.PATCH("/drops/:protocol_id/status", h.SetDropStatus)
		admin.DELETE("/drops/:protocol_id", h.DeleteDrop)

		admin.POST("/drops/:protocol_id/codes", h.UploadCodes)
		admin.GET("/drops/:protocol_id/codes", h.ListCodes)
		admin.GET("/drops/:protocol_id/codes/stats", h.CodeStats)
		admin.DELETE("/drops/:protocol_id/codes", h.DeleteCodes)

		admin.GET("/claims", h.ListClaims)
		admin.GET("/claims/stats", h.ClaimStats)

		admin.POST("/maintenance/purge-tokens", h.PurgeTokens)
	}
}

type protocolResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
	Category    *string `json:"category,omitempty"`
	Difficulty  *string `json:"difficulty,omitempty"`
	Status      string  `json:"status"`
	Active      bool    `json:"active"`
	OrderIndex  int     `json:"order_index"`
}

func toProtocolResponse(p *model.Protocol) protocolResponse {
	return protocolResponse{
		ID:          p.ID,
		Name:        p.Name,
		Title:       p.Title,
		Description: p.Description,
		LogoURL:     p.LogoURL,
		Category:    p.Category,
		Difficulty:  p.Difficulty,
		Status:      p.Status,
		Active:      p.Active,
		OrderIndex:  p.OrderIndex,
	}
}

func (h *adminRoutes) ListProtocols(c *gin.Context) {
	includeAll := c.Query("all") == "true"

	protocols, err := h.registry.ListProtocols(c.Request.Context(), includeAll)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list protocols"})
		return
	}

	response := make([]protocolResponse, len(protocols))
	for i, p := range protocols {
		response[i] = toProtocolResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

type createProtocolRequest struct {
	ID          string  `json:"id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
	Category    *string `json:"category"`
	Difficulty  *string `json:"difficulty"`
	SecretWord  *string `json:"secret_word"`
	Status      string  `json:"status"`
	OrderIndex  int     `json:"order_index"`
}

func (h *adminRoutes) CreateProtocol(c *gin.Context) {
	var req createProtocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	protocol := &model.Protocol{
		ID:          req.ID,
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		SecretWord:  req.SecretWord,
		Status:      req.Status,
		Active:      true,
		OrderIndex:  req.OrderIndex,
	}

	created, err := h.registry.CreateProtocol(c.Request.Context(), protocol)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id and name are required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create protocol"})
		return
	}

	c.JSON(http.StatusCreated, toProtocolResponse(created))
}

func (h *adminRoutes) GetProtocol(c *gin.Context) {
	protocol, err := h.registry.GetProtocol(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProtocolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "protocol not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get protocol"})
		return
	}
	c.JSON(http.StatusOK, toProtocolResponse(protocol))
}

type updateProtocolRequest struct {
	Name        *string `json:"name"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
	Category    *string `json:"category"`
	Difficulty  *string `json:"difficulty"`
	SecretWord  *string `json:"secret_word"`
	Status      *string `json:"status"`
	Active      *bool   `json:"active"`
	OrderIndex  *int    `json:"order_index"`
}

func (h *adminRoutes) UpdateProtocol(c *gin.Context) {
	var req updateProtocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.registry.UpdateProtocol(c.Request.Context(), c.Param("id"), &model.ProtocolUpdate{
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		SecretWord:  req.SecretWord,
		Status:      req.Status,
		Active:      req.Active,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		if errors.Is(err, service.ErrProtocolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "protocol not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update protocol"})
		return
	}
	c.JSON(http.StatusOK, toProtocolResponse(updated))
}

// DeleteProtocol deactivates a protocol. Passing confirm=true removes it
// permanently along with its questions.
func (h *adminRoutes) DeleteProtocol(c *gin.Context) {
	id := c.Param("id")

	var err error
	if c.Query("confirm") == "true" {
		err = h.registry.HardDeleteProtocol(c.Request.Context(), id)
	} else {
		err = h.registry.DeleteProtocol(c.Request.Context(), id)
	}
	if err != nil {
		if errors.Is(err, service.ErrProtocolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "protocol not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete protocol"})
		return
	}
	c.Status(http.StatusOK)
}

type adminAnswer struct {
	ID         string `json:"id,omitempty"`
	Text       string `json:"text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

type adminQuestionResponse struct {
	ID          string        `json:"id"`
	ProtocolID  string        `json:"protocol_id"`
	Text        string        `json:"text"`
	Explanation *string       `json:"explanation,omitempty"`
	OrderIndex  int           `json:"order_index"`
	Active      bool          `json:"active"`
	Answers     []adminAnswer `json:"answers"`
}

func toAdminQuestion(q *model.Question) adminQuestionResponse {
	answers := make([]adminAnswer, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = adminAnswer{
			ID:         a.ID.String(),
			Text:       a.Text,
			IsCorrect:  a.IsCorrect,
			OrderIndex: a.OrderIndex,
		}
	}
	return adminQuestionResponse{
		ID:          q.ID.String(),
		ProtocolID:  q.ProtocolID,
		Text:        q.Text,
		Explanation: q.Explanation,
		OrderIndex:  q.OrderIndex,
		Active:      q.Active,
		Answers:     answers,
	}
}

func (h *adminRoutes) ListQuestions(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	questions, err := h.registry.QuestionsByProtocol(c.Request.Context(), c.Param("id"), includeInactive)
	if err != nil {
		if errors.Is(err, service.ErrProtocolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "protocol not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list questions"})
		return
	}

	response := make([]adminQuestionResponse, len(questions))
	for i, q := range questions {
		response[i] = toAdminQuestion(q)
	}
	c.JSON(http.StatusOK, response)
}

type questionRequest struct {
	ProtocolID  string        `json:"protocol_id" binding:"required"`
	Text        string        `json:"text" binding:"required"`
	Explanation *string       `json:"explanation"`
	OrderIndex  int           `json:"order_index"`
	Answers     []adminAnswer `json:"answers" binding:"required"`
}

func (r *questionRequest) toModel(id uuid.UUID) *model.Question {
	answers := make([]model.Answer, len(r.Answers))
	for i, a := range r.Answers {
		var answerID uuid.UUID
		if a.ID != "" {
			if parsed, err := uuid.Parse(a.ID); err == nil {
				answerID = parsed
			}
		}
		answers[i] = model.Answer{
			ID:         answerID,
			Text:       a.Text,
			IsCorrect:  a.IsCorrect,
			OrderIndex: a.OrderIndex,
		}
	}
	return &model.Question{
		ID:          id,
		ProtocolID:  r.ProtocolID,
		Text:        r.Text,
		Explanation: r.Explanation,
		OrderIndex:  r.OrderIndex,
		Active:      true,
		Answers:     answers,
	}
}

func (h *adminRoutes) CreateQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	question := req.toModel(uuid.Nil)
	err := h.registry.CreateQuestion(c.Request.Context(), question)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProtocolNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "protocol not found"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "question text and answers are required"})
		case errors.Is(err, service.ErrNoCorrectAnswer):
			c.JSON(http.StatusBadRequest, gin.H{"error": "question must have at least one correct answer"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create question"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"question_id": question.ID.String()})
}

func (h *adminRoutes) UpdateQuestion(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err = h.registry.UpdateQuestion(c.Request.Context(), req.toModel(questionID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "question text and answers are required"})
		case errors.Is(err, service.ErrNoCorrectAnswer):
			c.JSON(http.StatusBadRequest, gin.H{"error": "question must have at least one correct answer"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update question"})
		}
		return
	}
	c.Status(http.StatusOK)
}

type statusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *adminRoutes) SetQuestionStatus(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}

	err = h.registry.SetQuestionActive(c.Request.Context(), questionID, *req.Active)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update question status"})
		return
	}
	c.Status(http.StatusOK)
}

func (h *adminRoutes) DeleteQuestion(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	err = h.registry.DeleteQuestion(c.Request.Context(), questionID)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete question"})
		return
	}
	c.Status(http.StatusOK)
}

type createDropRequest struct {
	ProtocolID        string  `json:"protocol_id" binding:"required"`
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	City              string  `json:"city"`
	Country           string  `json:"country"`
	EventURL          string  `json:"event_url"`
	StartDate         string  `json:"start_date" binding:"required"`
	EndDate           string  `json:"end_date" binding:"required"`
	ExpiryDate        string  `json:"expiry_date" binding:"required"`
	SecretCode        string  `json:"secret_code"`
	Email             string  `json:"email" binding:"required"`
	RequestedCodes    int     `json:"requested_codes"`
	VirtualEvent      bool    `json:"virtual_event"`
	PrivateEvent      bool    `json:"private_event"`
	QuizTitle         *string `json:"quiz_title"`
	QuizSubtitle      *string `json:"quiz_subtitle"`
	PassingPercentage int     `json:"passing_percentage"`
}

type dropResponse struct {
	ID                string  `json:"id"`
	ProtocolID        string  `json:"protocol_id"`
	Name              string  `json:"name"`
	EventID           int64   `json:"event_id"`
	ExpiryDate        int64   `json:"expiry_date"`
	Active            bool    `json:"active"`
	QuizTitle         *string `json:"quiz_title,omitempty"`
	QuizSubtitle      *string `json:"quiz_subtitle,omitempty"`
	PassingPercentage int     `json:"passing_percentage"`
}

func toDropResponse(d *model.Drop) dropResponse {
	return dropResponse{
		ID:                d.ID.String(),
		ProtocolID:        d.ProtocolID,
		Name:              d.Name,
		EventID:           d.EventID,
		ExpiryDate:        d.ExpiryDate.Unix(),
		Active:            d.Active,
		QuizTitle:         d.QuizTitle,
		QuizSubtitle:      d.QuizSubtitle,
		PassingPercentage: d.PassingPercentage,
	}
}

const dateLayout = "2006-01-02"

func (h *adminRoutes) CreateDrop(c *gin.Context) {
	var req createDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
		return
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
		return
	}
	expiryDate, err := time.Parse(dateLayout, req.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiry_date, expected YYYY-MM-DD"})
		return
	}

	drop, err := h.drops.CreateDrop(c.Request.Context(), &service.CreateDropParams{
		ProtocolID:        req.ProtocolID,
		Name:              req.Name,
		Description:       req.Description,
		City:              req.City,
		Country:           req.Country,
		EventURL:          req.EventURL,
		StartDate:         startDate,
		EndDate:           endDate,
		ExpiryDate:        expiryDate,
		SecretCode:        req.SecretCode,
		Email:             req.Email,
		RequestedCodes:    req.RequestedCodes,
		VirtualEvent:      req.VirtualEvent,
		PrivateEvent:      req.PrivateEvent,
		QuizTitle:         req.QuizTitle,
		QuizSubtitle:      req.QuizSubtitle,
		PassingPercentage: req.PassingPercentage,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "protocol_id, name and email are required"})
		case errors.Is(err, service.ErrDropExists):
			c.JSON(http.StatusConflict, gin.H{"error": "a drop already exists for this protocol"})
		case errors.Is(err, service.ErrUpstream):
			c.JSON(http.StatusBadGateway, gin.H{"error": "reward issuer request failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create drop"})
		}
		return
	}

	c.JSON(http.StatusCreated, toDropResponse(drop))
}

func (h *adminRoutes) ListDrops(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	drops, err := h.drops.ListDrops(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list drops"})
		return
	}

	response := make([]dropResponse, len(drops))
	for i, d := range drops {
		response[i] = toDropResponse(d)
	}
	c.JSON(http.StatusOK, response)
}

func (h *adminRoutes) SetDropStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}

	err := h.drops.SetDropActive(c.Request.Context(), c.Param("protocol_id"), *req.Active)
	if err != nil {
		if errors.Is(err, service.ErrDropNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "drop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update drop status"})
		return
	}
	c.Status(http.StatusOK)
}

func (h *adminRoutes) DeleteDrop(c *gin.Context) {
	err := h.drops.DeleteDrop(c.Request.Context(), c.Param("protocol_id"))
	if err != nil {
		if errors.Is(err, service.ErrDropNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "drop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete drop"})
		return
	}
	c.Status(http.StatusOK)
}

// dropID resolves the drop for the protocol in the path. Code endpoints
// are keyed by protocol since a protocol has at most one drop.
func (h *adminRoutes) dropID(c *gin.Context) (uuid.UUID, bool) {
	drops, err := h.drops.ListDrops(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve drop"})
		return uuid.Nil, false
	}
	protocolID := c.Param("protocol_id")
	for _, d := range drops {
		if d.ProtocolID == protocolID {
			return d.ID, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "drop not found"})
	return uuid.Nil, false
}

// UploadCodes accepts a newline-delimited plain text body of codes or
// minting URLs.
func (h *adminRoutes) UploadCodes(c *gin.Context) {
	dropID, ok := h.dropID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 4<<20))
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is required"})
		return
	}

	report, err := h.drops.UploadCodes(c.Request.Context(), dropID, string(body))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no codes found in body"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      report.Total,
		"inserted":   report.Inserted,
		"duplicates": report.Duplicates,
	})
}

type codeResponse struct {
	ID              string  `json:"id"`
	Code            string  `json:"code"`
	Claimed         bool    `json:"claimed"`
	ClaimedByWallet *string `json:"claimed_by_wallet,omitempty"`
	ClaimedAt       *int64  `json:"claimed_at,omitempty"`
	Confirmed       bool    `json:"confirmed"`
}

func (h *adminRoutes) ListCodes(c *gin.Context) {
	dropID, ok := h.dropID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	codes, err := h.drops.ListCodes(c.Request.Context(), dropID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list codes"})
		return
	}

	response := make([]codeResponse, len(codes))
	for i, code := range codes {
		var claimedAt *int64
		if code.ClaimedAt != nil {
			unix := code.ClaimedAt.Unix()
			claimedAt = &unix
		}
		response[i] = codeResponse{
			ID:              code.ID.String(),
			Code:            code.Code,
			Claimed:         code.Claimed,
			ClaimedByWallet: code.ClaimedByWallet,
			ClaimedAt:       claimedAt,
			Confirmed:       code.ConfirmedAt != nil,
		}
	}
	c.JSON(http.StatusOK, response)
}

func (h *adminRoutes) CodeStats(c *gin.Context) {
	dropID, ok := h.dropID(c)
	if !ok {
		return
	}

	stats, err := h.drops.CodeStats(c.Request.Context(), dropID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get code stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     stats.Total,
		"claimed":   stats.Claimed,
		"available": stats.Available,
	})
}

func (h *adminRoutes) DeleteCodes(c *gin.Context) {
	dropID, ok := h.dropID(c)
	if !ok {
		return
	}

	deleted, err := h.drops.DeleteCodes(c.Request.Context(), dropID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete codes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *adminRoutes) ListClaims(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet is required"})
		return
	}

	claims, err := h.drops.ClaimsByWallet(c.Request.Context(), wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list claims"})
		return
	}
	c.JSON(http.StatusOK, toClaimViews(claims))
}

func (h *adminRoutes) ClaimStats(c *gin.Context) {
	protocolID := c.Query("protocol")
	if protocolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "protocol is required"})
		return
	}

	stats, err := h.drops.ClaimStats(c.Request.Context(), protocolID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get claim stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_attempts": stats.TotalAttempts,
		"passed_count":   stats.PassedCount,
		"claimed_count":  stats.ClaimedCount,
		"average_score":  stats.AverageScore,
	})
}

func (h *adminRoutes) PurgeTokens(c *gin.Context) {
	purged, err := h.drops.PurgeExpiredTokens(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to purge tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": purged})
}
