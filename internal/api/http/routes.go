package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/portfolio/internal/api/middleware"
)

// Register mounts the API routes on api (normally the /api group).
func (h *Handlers) Register(api *gin.RouterGroup) {
	api.GET("/health", h.Health)
	api.GET("/health/detailed", h.HealthDetailed)

	api.GET("/projects", h.ListProjects)
	api.GET("/projects/featured", h.FeaturedProjects)
	api.GET("/projects/categories", h.Categories)
	api.GET("/projects/:id", h.GetProject)

	api.POST("/contact", h.SubmitContact)

	api.POST("/admin/login", h.Login)

	adm := api.Group("/admin", middleware.RequireAdmin(h.admins))
	{
		adm.GET("/dashboard", h.Dashboard)

		adm.GET("/projects", h.AdminListProjects)
		adm.POST("/projects", h.CreateProject)
		adm.GET("/projects/:id", h.AdminGetProject)
		adm.PUT("/projects/:id", h.UpdateProject)
		adm.DELETE("/projects/:id", h.DeleteProject)

		adm.GET("/contacts", h.ListContacts)
		adm.GET("/contacts/:id", h.GetContact)
		adm.PATCH("/contacts/:id", h.UpdateContact)

		adm.POST("/upload", h.Upload)
		adm.POST("/upload/multiple", h.UploadMultiple)
		adm.DELETE("/upload/:filename", h.DeleteUpload)
	}
}
