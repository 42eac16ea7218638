package app

import (
	"coursehub_backend/docs"
	"coursehub_backend/internal/config"
	"coursehub_backend/internal/middleware"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/monitoring"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// limitByUser 已登录用户按用户维度限流，兜底退回来源 IP
func limitByUser(c *gin.Context) string {
	if claims := util.GetUserFromContext(c); claims != nil {
		return "user:" + strconv.FormatUint(uint64(claims.UserID), 10)
	}
	return c.ClientIP()
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Health)

	// 1. 公共目录：游客可浏览，登录用户附带解锁状态
	public := router.Group("/api")
	public.Use(middleware.TryAuthMiddleware(cfg))
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.GET("/courses", c.course.List)
		public.GET("/courses/:courseId", c.course.Get)
	}

	// 2. 登录用户接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		authGroup.GET("/enrollments", c.enrollment.ListMine)
		authGroup.POST("/courses/:courseId/enroll", c.enrollment.Enroll)
		authGroup.DELETE("/courses/:courseId/enroll", c.enrollment.Unenroll)
		authGroup.GET("/courses/:courseId/progress", c.enrollment.Progress)
		authGroup.GET("/courses/:courseId/lessons", c.lesson.List)

		authGroup.GET("/lessons/:lessonId", c.lesson.Get)
		authGroup.POST("/lessons/:lessonId/complete", c.enrollment.CompleteLesson)
		authGroup.GET("/lessons/:lessonId/quiz", c.quiz.GetQuiz)
		// 判分接口单独限流，防止暴力刷分
		authGroup.POST("/lessons/:lessonId/quiz/submit", a.submitLimiter.Middleware(limitByUser), c.quiz.SubmitQuiz)
	}

	// 3. 讲师接口
	instructor := router.Group("/api/instructor")
	instructor.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.Instructor),
	)
	{
		instructor.GET("/courses", c.course.ListMine)
		instructor.POST("/courses", c.course.Create)
		instructor.PUT("/courses/:courseId", c.course.Update)
		instructor.DELETE("/courses/:courseId", c.course.Delete)
		instructor.PUT("/courses/:courseId/published", c.course.SetPublished)
		instructor.POST("/courses/:courseId/lessons", c.lesson.Create)

		instructor.PUT("/lessons/:lessonId", c.lesson.Update)
		instructor.DELETE("/lessons/:lessonId", c.lesson.Delete)
		instructor.POST("/lessons/:lessonId/asset", c.lesson.UploadAsset)
		instructor.GET("/lessons/:lessonId/questions", c.quiz.ListQuestions)
		instructor.POST("/lessons/:lessonId/questions", c.quiz.CreateQuestion)

		instructor.PUT("/questions/:id", c.quiz.UpdateQuestion)
		instructor.DELETE("/questions/:id", c.quiz.DeleteQuestion)
	}

	// 4. 管理员接口
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.Admin),
	)
	{
		admin.GET("/users", c.user.List)
		admin.GET("/users/:id", c.user.Get)
		admin.PUT("/users/:id/role", c.user.SetRole)
		admin.PUT("/users/:id/disabled", c.user.SetDisabled)
		admin.PUT("/users/:id/password", c.user.ResetPassword)
		admin.DELETE("/users/:id", c.user.Delete)
	}
}
