package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/portfolio/internal/api/response"
	"github.com/GriffinCanCode/portfolio/internal/domain/project"
)

type projectListQuery struct {
	Category string `form:"category" binding:"max=50"`
	Featured *bool  `form:"featured"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PerPage  int    `form:"per_page,default=10" binding:"min=1,max=50"`
}

type featuredQuery struct {
	Limit int `form:"limit,default=6" binding:"min=1,max=20"`
}

// ListProjects returns one page of published projects.
func (h *Handlers) ListProjects(c *gin.Context) {
	var q projectListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Invalid(c, bindErrors(err)...)
		return
	}

	page, err := h.projects.ListPublished(c.Request.Context(), project.Query{
		Category: q.Category,
		Featured: q.Featured,
		Search:   q.Search,
		Page:     q.Page,
		PerPage:  q.PerPage,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProject returns one published project by id or slug.
func (h *Handlers) GetProject(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// FeaturedProjects returns the featured projects in display order.
func (h *Handlers) FeaturedProjects(c *gin.Context) {
	var q featuredQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Invalid(c, bindErrors(err)...)
		return
	}
	items, err := h.projects.Featured(c.Request.Context(), q.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Categories returns published categories ordered by project count.
func (h *Handlers) Categories(c *gin.Context) {
	cats, err := h.projects.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories":       cats,
		"total_categories": len(cats),
	})
}
