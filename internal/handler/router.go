package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/mindquest/internal/middleware"
)

// RouterDeps - всё, что нужно для регистрации маршрутов приложения
type RouterDeps struct {
	Quiz        *QuizHandler
	Auth        *AuthHandler
	API         *APIHandler
	Middleware  *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
	AuthLimit   middleware.RateLimitConfig
	CORSOrigins []string
}

// RegisterRoutes регистрирует HTML-страницы, JSON API и проверку здоровья
func RegisterRoutes(router *gin.Engine, d RouterDeps) {
	m := d.Middleware
	quizID := middleware.ExtractUintParam("id", "quizID")

	router.GET("/healthz", d.API.Health)

	// HTML-страницы: у каждой формы есть CSRF токен, каждый POST его проверяет
	pages := router.Group("/")
	pages.Use(m.ProvideCSRF(), m.RequireCSRF())
	{
		pages.GET("/", m.OptionalSession(d.Quiz.ListQuizzes))
		pages.GET("/quiz/:id/", quizID, m.RequireSession(d.Quiz.QuizDetail))
		pages.POST("/quiz/:id/", quizID, m.RequireSession(d.Quiz.SubmitQuiz))

		accounts := pages.Group("/accounts")
		{
			limit := d.RateLimiter.Limit(d.AuthLimit)

			accounts.GET("/register/", m.OptionalSession(d.Auth.RegisterPage))
			accounts.POST("/register/", limit, m.OptionalSession(d.Auth.Register))
			accounts.GET("/login/", m.OptionalSession(d.Auth.LoginPage))
			accounts.POST("/login/", limit, m.OptionalSession(d.Auth.Login))
			accounts.POST("/logout/", m.RequireSession(d.Auth.Logout))
		}
	}

	api := router.Group("/api")
	if len(d.CORSOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	api.Use(m.RequireCSRF())
	{
		api.GET("/csrf", m.ProvideCSRF(), d.API.GetCSRFToken)
		api.GET("/quizzes", d.API.ListQuizzes)
		api.GET("/quizzes/:id", quizID, m.RequireAPISession(d.API.GetQuiz))
		api.POST("/quizzes/:id/submit", quizID, m.RequireAPISession(d.API.SubmitQuiz))
	}
}
