package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"harmony-match/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	userH *UserHandler,
	profileH *ProfileHandler,
	harmonyH *HarmonyHandler,
	matchH *MatchHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	users := r.Group("/users")
	users.POST("", userH.Register)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)

	authorized := r.Group("/")
	authorized.Use(JWTAuthMiddleware(jwtServ))

	profile := authorized.Group("/profile")
	profile.GET("", profileH.GetProfile)
	profile.POST("/statements", profileH.SubmitStatement)
	profile.POST("/feedback", profileH.SubmitFeedback)

	harmony := authorized.Group("/harmony")
	harmony.GET("/:candidateID", harmonyH.ScorePair)
	harmony.POST("/outcomes", harmonyH.RecordOutcome)

	authorized.GET("/matches", matchH.Discover)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
