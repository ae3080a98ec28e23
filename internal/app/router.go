package app

import (
	"skill_matrix_backend/docs"
	"skill_matrix_backend/internal/config"
	"skill_matrix_backend/internal/middleware"
	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/profile", c.auth.UpdateProfile)
		authGroup.GET("/dashboard", c.dashboard.Get)

		// Candidate-facing test catalog
		authGroup.GET("/tests", c.template.ListAvailable)
		authGroup.GET("/tests/:id", c.template.GetSnapshot)

		// Session lifecycle
		authGroup.POST("/assessments", c.assessment.Start)
		authGroup.GET("/assessments", c.assessment.List)
		authGroup.GET("/assessments/in-progress/:templateId", c.assessment.GetInProgress)
		authGroup.PUT("/assessments/:id/answers", c.assessment.RecordAnswer)
		authGroup.POST("/assessments/:id/submit", c.assessment.Submit)
		authGroup.GET("/assessments/:id/result", c.assessment.GetResult)

		// Skill profile
		authGroup.GET("/skills", c.skill.ListSkills)
		authGroup.GET("/skills/domains", c.skill.ListDomains)
		authGroup.GET("/my/skills", c.skill.MySkills)
		authGroup.GET("/my/gaps", c.skill.MyGaps)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin, model.RoleManager))
	{
		admin.POST("/templates", c.template.Create)
		admin.GET("/templates", c.template.List)
		admin.GET("/templates/:id", c.template.Get)
		admin.PUT("/templates/:id", c.template.Update)
		admin.DELETE("/templates/:id", c.template.Delete)
		admin.PUT("/templates/:id/active", c.template.SetActive)
		admin.POST("/templates/:id/questions", c.template.AddQuestion)
		admin.DELETE("/templates/:id/questions/:questionId", c.template.RetireQuestion)
		admin.POST("/templates/media", c.template.UploadMedia)

		admin.GET("/assessments/:id", c.assessment.AdminGet)

		admin.POST("/skills", c.skill.CreateSkill)
		admin.DELETE("/skills/:id", c.skill.DeleteSkill)
		admin.POST("/skills/domains", c.skill.CreateDomain)
		admin.POST("/skills/subcategories", c.skill.CreateSubcategory)
	}
}
