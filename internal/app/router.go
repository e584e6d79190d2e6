package app

import (
	"quizhub_backend/docs"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/middleware"
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/users/register", c.auth.Register)
		public.POST("/users/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/users/profile", c.user.GetProfile)

		quizzes := authGroup.Group("/quizzes")
		{
			quizzes.GET("", c.quiz.List)
			quizzes.GET("/user", c.quiz.ListMine)
			quizzes.GET("/popular", c.quiz.ListPopular)
			quizzes.GET("/:quizId", c.quiz.Get)

			// 出题人接口
			authoring := quizzes.Group("")
			authoring.Use(middleware.RoleMiddleware(model.Admin, model.QuizMaker))
			{
				authoring.POST("", c.quiz.Create)
				authoring.PUT("/:quizId", c.quiz.Update)
				authoring.DELETE("/:quizId", c.quiz.Delete)
				authoring.POST("/:quizId/media", c.quiz.UploadMedia)
			}

			// 答题会话
			attempt := quizzes.Group("/:quizId/attempt")
			{
				attempt.POST("/start", c.attempt.Start)
				attempt.PUT("/answer", c.attempt.SelectAnswer)
				attempt.PUT("/navigate", c.attempt.Navigate)
				attempt.PUT("/time", c.attempt.SyncTime)
				attempt.POST("/violation", c.attempt.ReportViolation)
				attempt.POST("/reload", c.attempt.ReportReload)
				attempt.POST("/submit", c.attempt.Submit)
			}
		}

		results := authGroup.Group("/results")
		{
			results.POST("/submit", c.result.Submit)
			results.GET("/", c.result.History)
			// 创建者/管理员的测验面板；本人成绩走 GET /results/?quizId=
			results.GET("/quiz/:quizId", c.result.QuizReport)
			results.GET("/:resultId", c.result.Get)
		}
	}

	// 管理员接口：严格要求 ADMIN 角色
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(
		middleware.AuthMiddleware(cfg),
		middleware.RoleMiddleware(model.Admin),
		middleware.ActivityMiddleware(repos.user),
	)
	{
		adminGroup.GET("", c.admin.Dashboard)
		adminGroup.GET("/users", c.admin.ListUsers)
		adminGroup.PUT("/users/:id/role", c.admin.UpdateUserRole)
	}
}
