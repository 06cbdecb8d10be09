package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harmony-match/internal/service"
)

const defaultDiscoverLimit = 20

// MatchHandler expone el descubrimiento de candidatos rankeados.
type MatchHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
	matchServ   *service.MatchService
}

func NewMatchHandler(logger *zap.Logger, profileServ *service.ProfileService, matchServ *service.MatchService) *MatchHandler {
	return &MatchHandler{
		logger:      logger,
		profileServ: profileServ,
		matchServ:   matchServ,
	}
}

// Discover maneja GET /matches: candidatos cercanos en el índice ANN,
// rankeados por armonía con los pesos del espectador.
func (h *MatchHandler) Discover(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	limit := defaultDiscoverLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	viewer, err := h.profileServ.GetOrCreateVector(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("viewer vector lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load candidates"})
		return
	}

	ranked, err := h.matchServ.DiscoverCandidates(c.Request.Context(), claims.UserID, viewer, limit)
	if err != nil {
		h.logger.Error("candidate discovery failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load candidates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": ranked})
}
