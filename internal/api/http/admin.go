package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/api/middleware"
	"github.com/GriffinCanCode/portfolio/internal/api/response"
	"github.com/GriffinCanCode/portfolio/internal/domain/admin"
	"github.com/GriffinCanCode/portfolio/internal/domain/contact"
	"github.com/GriffinCanCode/portfolio/internal/domain/project"
	"github.com/GriffinCanCode/portfolio/internal/storage/uploads"
)

// Login exchanges admin credentials for a bearer token.
func (h *Handlers) Login(c *gin.Context) {
	var creds admin.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		response.Invalid(c, bindErrors(err)...)
		return
	}
	token, err := h.admins.Login(c.Request.Context(), creds)
	if err != nil {
		h.logger.Warn("admin login rejected", zap.String("username", creds.Username), zap.String("ip", c.ClientIP()))
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

type adminProjectQuery struct {
	Status   project.Status `form:"status" binding:"omitempty,oneof=published draft archived"`
	Category string         `form:"category"`
	Featured *bool          `form:"featured"`
	Search   string         `form:"search"`
	Page     int            `form:"page,default=1" binding:"min=1"`
	PerPage  int            `form:"per_page,default=20" binding:"min=1,max=50"`
}

// AdminListProjects lists projects of every status.
func (h *Handlers) AdminListProjects(c *gin.Context) {
	var q adminProjectQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Invalid(c, bindErrors(err)...)
		return
	}
	page, err := h.projects.ListAll(c.Request.Context(), project.Query{
		Category: q.Category,
		Featured: q.Featured,
		Search:   q.Search,
		Status:   q.Status,
		Page:     q.Page,
		PerPage:  q.PerPage,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// AdminGetProject returns a project regardless of status.
func (h *Handlers) AdminGetProject(c *gin.Context) {
	p, err := h.projects.GetAny(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProject adds a project.
func (h *Handlers) CreateProject(c *gin.Context) {
	var in project.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Invalid(c, bindErrors(err)...)
		return
	}
	p, err := h.projects.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "project created", p.ID)
	c.JSON(http.StatusCreated, p)
}

// UpdateProject replaces a project's editable fields.
func (h *Handlers) UpdateProject(c *gin.Context) {
	var in project.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Invalid(c, bindErrors(err)...)
		return
	}
	p, err := h.projects.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "project updated", p.ID)
	c.JSON(http.StatusOK, p)
}

// DeleteProject removes a project.
func (h *Handlers) DeleteProject(c *gin.Context) {
	projectID := c.Param("id")
	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "project deleted", projectID)
	response.OK(c, "Project deleted successfully", gin.H{"id": projectID})
}

type contactListQuery struct {
	Read    *bool  `form:"read_status"`
	Replied *bool  `form:"replied"`
	Search  string `form:"search"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=20" binding:"min=1,max=50"`
}

// ListContacts lists the inbox, newest first.
func (h *Handlers) ListContacts(c *gin.Context) {
	var q contactListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Invalid(c, bindErrors(err)...)
		return
	}
	page, err := h.contacts.List(c.Request.Context(), contact.Query{
		Read:    q.Read,
		Replied: q.Replied,
		Search:  q.Search,
		Page:    q.Page,
		PerPage: q.PerPage,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetContact returns one message.
func (h *Handlers) GetContact(c *gin.Context) {
	m, err := h.contacts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateContact sets read/replied flags and notes.
func (h *Handlers) UpdateContact(c *gin.Context) {
	var u contact.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		response.Invalid(c, bindErrors(err)...)
		return
	}
	m, err := h.contacts.Update(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Upload stores one image from the multipart "file" field.
func (h *Handlers) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploads.MaxSize()+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, uploads.ErrTooLarge)
			return
		}
		response.Invalid(c, "file: is required")
		return
	}
	if header.Size > h.uploads.MaxSize() {
		h.fail(c, uploads.ErrTooLarge)
		return
	}
	stored, err := h.saveUpload(header)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "file uploaded", stored.Filename)
	response.OK(c, "File uploaded successfully", stored)
}

// MaxUploadFiles caps the files accepted by one multi-file upload.
const MaxUploadFiles = 10

// UploadMultiple stores up to MaxUploadFiles images from the multipart
// "files" field. Either every file is stored or none is.
func (h *Handlers) UploadMultiple(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadFiles*h.uploads.MaxSize()+1<<20)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, uploads.ErrTooLarge)
			return
		}
		response.Invalid(c, "files: is required")
		return
	}
	headers := form.File["files"]
	switch {
	case len(headers) == 0:
		response.Invalid(c, "files: is required")
		return
	case len(headers) > MaxUploadFiles:
		response.Fail(c, http.StatusBadRequest, response.CodeHTTP,
			fmt.Sprintf("Too many files. Maximum %d files per request.", MaxUploadFiles))
		return
	}
	for _, header := range headers {
		if header.Size > h.uploads.MaxSize() {
			h.fail(c, uploads.ErrTooLarge)
			return
		}
	}

	stored := make([]*uploads.File, 0, len(headers))
	for _, header := range headers {
		file, err := h.saveUpload(header)
		if err != nil {
			h.logger.Warn("multi-file upload rejected",
				zap.String("original_name", header.Filename),
				zap.Int("rolled_back", len(stored)),
				zap.Error(err))
			for _, done := range stored {
				if derr := h.uploads.Delete(done.Filename); derr != nil {
					h.logger.Error("upload rollback failed", zap.String("filename", done.Filename), zap.Error(derr))
				}
			}
			h.fail(c, err)
			return
		}
		stored = append(stored, file)
	}
	for _, file := range stored {
		h.audit(c, "file uploaded", file.Filename)
	}
	response.OK(c, "Files uploaded successfully", gin.H{
		"uploaded_files": stored,
		"total_files":    len(stored),
	})
}

func (h *Handlers) saveUpload(header *multipart.FileHeader) (*uploads.File, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return h.uploads.Save(f, header.Filename)
}

// DeleteUpload removes a stored image.
func (h *Handlers) DeleteUpload(c *gin.Context) {
	name := c.Param("filename")
	if err := h.uploads.Delete(name); err != nil {
		h.fail(c, err)
		return
	}
	h.audit(c, "file deleted", name)
	response.OK(c, "File deleted successfully", gin.H{"filename": name})
}

// Dashboard returns the admin overview counters.
func (h *Handlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	projects, err := h.projects.Stats(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	contacts, err := h.contacts.Stats(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	usage, err := h.uploads.Usage(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"contacts": contacts,
		"uploads":  usage,
		"requests": h.metrics.Snapshot(),
	})
}

func (h *Handlers) audit(c *gin.Context, action, target string) {
	fields := []zap.Field{zap.String("target", target)}
	if claims, ok := middleware.AdminClaims(c); ok {
		fields = append(fields, zap.String("admin", claims.Username))
	}
	h.logger.Info(action, fields...)
}
