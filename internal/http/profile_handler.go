package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harmony-match/internal/domain"
	"harmony-match/internal/service"
)

// ProfileHandler expone el pipeline de actualización de perfil por HTTP.
type ProfileHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
	clusters    *service.ClusterAssigner
	rateLimiter service.FeedbackRateLimiter
}

func NewProfileHandler(
	logger *zap.Logger,
	profileServ *service.ProfileService,
	clusters *service.ClusterAssigner,
	rateLimiter service.FeedbackRateLimiter,
) *ProfileHandler {
	return &ProfileHandler{
		logger:      logger,
		profileServ: profileServ,
		clusters:    clusters,
		rateLimiter: rateLimiter,
	}
}

// SubmitStatement maneja POST /profile/statements: una afirmación del
// usuario sobre sí mismo.
func (h *ProfileHandler) SubmitStatement(c *gin.Context) {
	h.submitText(c, service.TextKindStatement)
}

// SubmitFeedback maneja POST /profile/feedback: la opinión del usuario
// sobre un match presentado.
func (h *ProfileHandler) SubmitFeedback(c *gin.Context) {
	h.submitText(c, service.TextKindFeedback)
}

func (h *ProfileHandler) submitText(c *gin.Context, kind string) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile text request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.rateLimiter != nil && !h.rateLimiter.Allow(claims.UserID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many submissions"})
		return
	}

	extraction, records, err := h.profileServ.ExtractAndApply(c.Request.Context(), claims.UserID, req.Text, kind)
	if err != nil {
		h.logger.Error("profile update failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals":      len(extraction.Proposals),
		"applied":        len(records),
		"low_confidence": extraction.LowConfidence,
	})
}

// GetProfile maneja GET /profile: resumen por categoría del vector del
// usuario autenticado. Nunca expone los 256 valores crudos.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	vector, err := h.profileServ.GetOrCreateVector(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("profile lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}

	summary := make(map[string]gin.H, len(domain.Categories()))
	for _, category := range domain.Categories() {
		r, err := domain.RangeOf(category)
		if err != nil {
			continue
		}
		var sumVal, sumConf float64
		for i := r.Start; i < r.End; i++ {
			sumVal += vector.Values[i]
			sumConf += vector.Confidence[i]
		}
		n := float64(r.Len())
		summary[category] = gin.H{
			"mean_value":      sumVal / n,
			"mean_confidence": sumConf / n,
		}
	}

	resp := gin.H{
		"categories":   summary,
		"update_count": vector.UpdateCount,
	}
	if !vector.LastUpdated.IsZero() {
		resp["last_updated"] = vector.LastUpdated.UTC().Format(time.RFC3339)
	}
	if h.clusters != nil {
		clusterID, similarity := h.clusters.Assign(vector)
		resp["cluster"] = gin.H{"id": clusterID, "similarity": similarity}
	}

	c.JSON(http.StatusOK, resp)
}
