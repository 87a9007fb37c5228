package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"prediction-dashboard/internal/middleware"
	"prediction-dashboard/internal/models"
	"prediction-dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHeader identifies the browser tab issuing a request.
const SessionHeader = "X-Session-ID"

// Handler handles HTTP requests
type Handler struct {
	predictor *service.Predictor
	auth      *service.Authenticator
	logger    *zap.Logger
}

// NewHandler creates a new API handler. auth may be nil when operator login
// is not configured.
func NewHandler(predictor *service.Predictor, auth *service.Authenticator, logger *zap.Logger) *Handler {
	return &Handler{
		predictor: predictor,
		auth:      auth,
		logger:    logger,
	}
}

type classifyRequest struct {
	Text  string `json:"text" binding:"required"`
	Model string `json:"model"`
}

type variantRequest struct {
	Model string `json:"model" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRoutes registers all API routes. A non-empty jwtSecret puts the
// destructive history routes behind bearer auth.
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret []byte) {
	api := r.Group("/api/v1")
	{
		api.GET("/catalog/:variant", h.GetCatalog)

		// Heart disease page
		api.POST("/heart/predict", h.PredictRisk)

		// Banking complaint page
		api.POST("/banking/classify", h.ClassifyComplaint)
		api.PUT("/banking/variant", h.SwitchVariant)
		api.GET("/banking/current", h.GetCurrent)

		// History
		api.GET("/history/:variant", h.GetHistory)

		// Export
		api.GET("/export/csv", h.ExportCSV)
		api.GET("/export/json", h.ExportJSON)
	}

	if h.auth != nil {
		api.POST("/auth/login", h.Login)
	}

	manage := api.Group("/history")
	if len(jwtSecret) > 0 {
		manage.Use(middleware.AuthMiddleware(jwtSecret, h.logger))
	}
	manage.DELETE("/:variant/:index", h.RemoveEntry)
	manage.DELETE("/:variant", h.ClearHistory)

	// Health check
	r.GET("/health", h.HealthCheck)
}

// GetCatalog returns the class labels of a variant
func (h *Handler) GetCatalog(c *gin.Context) {
	variant, ok := h.variantParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"model":   variant,
		"classes": variant.Classes(),
	})
}

// PredictRisk handles the heart disease form
func (h *Handler) PredictRisk(c *gin.Context) {
	var input models.HeartDiseaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.predictor.AssessRisk(c.Request.Context(), c.GetHeader(SessionHeader), input)
	if err != nil {
		h.writePredictionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prediction": rec.PredictedLabel,
		"confidence": rec.Confidence,
		"level":      rec.Level,
		"record":     rec,
	})
}

// ClassifyComplaint handles the banking complaint form
func (h *Handler) ClassifyComplaint(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.GetHeader(SessionHeader)
	variant := models.ModelVariant(req.Model)
	if req.Model == "" {
		variant, _ = h.predictor.Current(sessionID)
		if !variant.IsComplaintModel() {
			variant = models.SixClass
		}
	}

	rec, err := h.predictor.ClassifyComplaint(c.Request.Context(), sessionID, req.Text, variant)
	if err != nil {
		h.writePredictionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":   rec.PredictedLabel,
		"confidence": rec.Confidence,
		"breakdown":  rec.Probabilities,
		"record":     rec,
	})
}

// SwitchVariant changes the session's active model
func (h *Handler) SwitchVariant(c *gin.Context) {
	var req variantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variant := models.ModelVariant(req.Model)
	if !variant.IsComplaintModel() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%v: %q is not a complaint model", models.ErrUnknownVariant, variant)})
		return
	}
	if err := h.predictor.SwitchVariant(c.GetHeader(SessionHeader), variant); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.predictor.History(variant))
}

// GetCurrent returns the session's active model and latest result
func (h *Handler) GetCurrent(c *gin.Context) {
	variant, rec := h.predictor.Current(c.GetHeader(SessionHeader))
	c.JSON(http.StatusOK, gin.H{
		"model":   variant,
		"classes": variant.Classes(),
		"result":  rec,
	})
}

// GetHistory returns the dashboard view of one variant's history
func (h *Handler) GetHistory(c *gin.Context) {
	variant, ok := h.variantParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.predictor.History(variant))
}

// RemoveEntry deletes one history entry
func (h *Handler) RemoveEntry(c *gin.Context) {
	variant, ok := h.variantParam(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	if err := h.predictor.RemoveEntry(c.Request.Context(), variant, index); err != nil {
		h.logger.Error("Failed to remove history entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove entry"})
		return
	}

	c.JSON(http.StatusOK, h.predictor.History(variant))
}

// ClearHistory empties one variant's history
func (h *Handler) ClearHistory(c *gin.Context) {
	variant, ok := h.variantParam(c)
	if !ok {
		return
	}

	if err := h.predictor.ClearHistory(c.Request.Context(), variant); err != nil {
		h.logger.Error("Failed to clear history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear history"})
		return
	}

	c.JSON(http.StatusOK, h.predictor.History(variant))
}

// Login exchanges operator credentials for a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, expires, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expires,
	})
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "prediction-dashboard",
		"version": "1.0.0",
	})
}

func (h *Handler) variantParam(c *gin.Context) (models.ModelVariant, bool) {
	name := c.Param("variant")
	if name == "" {
		name = c.Query("model")
	}
	variant, err := models.ParseVariant(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return variant, true
}

func (h *Handler) writePredictionError(c *gin.Context, err error) {
	var transportErr *service.TransportError
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error_data": gin.H{
				"status":  transportErr.StatusCode,
				"message": transportErr.Message,
			},
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Message})
	case errors.Is(err, models.ErrUnknownVariant):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrShapeContract):
		h.logger.Error("Rejected malformed prediction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction did not match the model's classes"})
	default:
		h.logger.Error("Prediction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
	}
}
