package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	allowedOrigins []string,
	tokens TokenParser,
	systemH *SystemHandler,
	userH *UserHandler,
	recipeH *RecipeHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, CORS y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(allowedOrigins), jsonContentTypeMiddleware())

	r.GET("/", systemH.Root)

	api := r.Group("/api")
	api.GET("/health", systemH.Health)
	api.GET("/test", systemH.Test)
	api.POST("/register", userH.Register)
	api.POST("/login", userH.Login)

	protected := api.Group("")
	protected.Use(JWTAuthMiddleware(tokens))
	protected.POST("/logout", userH.Logout)
	protected.GET("/me", userH.Me)
	protected.POST("/generate-recipe", recipeH.Generate)

	recipes := protected.Group("/recipes")
	recipes.GET("", recipeH.List)
	recipes.POST("", recipeH.Create)
	recipes.DELETE("", recipeH.Clear)
	recipes.GET("/similar", recipeH.Similar)
	recipes.GET("/:id", recipeH.Get)
	recipes.DELETE("/:id", recipeH.Delete)
	recipes.POST("/:id/email", recipeH.Email)

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
