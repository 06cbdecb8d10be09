package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harmony-match/internal/service"
)

// HarmonyHandler expone el scoring de compatibilidad entre pares y el
// registro de resultados de matches.
type HarmonyHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
	matchServ   *service.MatchService
	scorer      *service.CompatibilityScorer
}

func NewHarmonyHandler(
	logger *zap.Logger,
	profileServ *service.ProfileService,
	matchServ *service.MatchService,
	scorer *service.CompatibilityScorer,
) *HarmonyHandler {
	return &HarmonyHandler{
		logger:      logger,
		profileServ: profileServ,
		matchServ:   matchServ,
		scorer:      scorer,
	}
}

// ScorePair maneja GET /harmony/:candidateID: puntúa al usuario
// autenticado contra un candidato con sus pesos personalizados.
func (h *HarmonyHandler) ScorePair(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	candidateID := c.Param("candidateID")
	if candidateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	viewer, err := h.profileServ.GetOrCreateVector(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("viewer vector lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not score pair"})
		return
	}
	candidate, err := h.profileServ.GetOrCreateVector(c.Request.Context(), candidateID)
	if err != nil {
		h.logger.Error("candidate vector lookup failed", zap.String("candidate_id", candidateID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not score pair"})
		return
	}

	result := h.scorer.ScoreFor(c.Request.Context(), viewer, candidate, claims.UserID)
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// RecordOutcome maneja POST /harmony/outcomes: like o dislike sobre un
// match presentado.
func (h *HarmonyHandler) RecordOutcome(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		CandidateID string `json:"candidate_id" binding:"required"`
		Liked       *bool  `json:"liked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outcome request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.CandidateID == claims.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot rate yourself"})
		return
	}

	mutual, err := h.matchServ.RecordOutcome(c.Request.Context(), claims.UserID, req.CandidateID, *req.Liked)
	if err != nil {
		h.logger.Error("record outcome failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record outcome"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mutual_match": mutual})
}
