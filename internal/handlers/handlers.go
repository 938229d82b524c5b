package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/changeset"
	"github.com/cenniki/pricelist-service/internal/importer"
	"github.com/cenniki/pricelist-service/internal/producers"
	"github.com/cenniki/pricelist-service/internal/scheduler"
	"github.com/cenniki/pricelist-service/internal/storage"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success" jsonschema:"required"`
	Error   string `json:"error" jsonschema:"required"`
}

// Deps are the services the API is built on
type Deps struct {
	ChangeSets *changeset.Service
	Trigger    *scheduler.Trigger
	Catalogs   *producers.Repository
	// Uploads keeps a copy of every imported file; nil disables archiving
	Uploads        storage.Storage
	MaxUploadBytes int64
	Logger         *zerolog.Logger
}

// Handler serves the pricelist REST API
type Handler struct {
	changes   *changeset.Service
	trigger   *scheduler.Trigger
	catalogs  *producers.Repository
	uploads   storage.Storage
	maxUpload int64
	logger    *zerolog.Logger
}

// New creates a Handler
func New(deps Deps) *Handler {
	if deps.Logger == nil {
		nop := zerolog.Nop()
		deps.Logger = &nop
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 20 << 20
	}
	return &Handler{
		changes:   deps.ChangeSets,
		trigger:   deps.Trigger,
		catalogs:  deps.Catalogs,
		uploads:   deps.Uploads,
		maxUpload: deps.MaxUploadBytes,
		logger:    deps.Logger,
	}
}

// Register mounts the API routes on r
func (h *Handler) Register(r gin.IRouter) {
	scheduled := r.Group("/scheduled-changes")
	{
		scheduled.POST("", h.CreateScheduledChange)
		scheduled.GET("", h.ListScheduledChanges)
		scheduled.PATCH("", h.PatchScheduledChange)
		scheduled.DELETE("", h.DeleteScheduledChange)
		scheduled.GET("/apply", h.DueStatus)
		scheduled.POST("/apply", h.ApplyDue)
		scheduled.GET("/:id/export", h.ExportScheduledChange)
	}

	r.POST("/diff", h.Diff)

	producerRoutes := r.Group("/producers")
	{
		producerRoutes.GET("", h.ListProducers)
		producerRoutes.GET("/:slug/catalog", h.GetCatalog)
		producerRoutes.PUT("/:slug/catalog", h.PutCatalog)
		producerRoutes.POST("/:slug/import", h.ImportCatalog)
		producerRoutes.GET("/:slug/imports", h.ListImports)
		producerRoutes.DELETE("/:slug/imports", h.PruneImports)
	}
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, changeset.ErrValidation),
		errors.Is(err, catalog.ErrShapeMismatch),
		errors.Is(err, catalog.ErrUnknownLayout),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrNoRows):
		status = http.StatusBadRequest
	case errors.Is(err, changeset.ErrNotFound),
		errors.Is(err, producers.ErrUnknownProducer),
		errors.Is(err, producers.ErrCatalogNotFound):
		status = http.StatusNotFound
	case errors.Is(err, changeset.ErrImmutable),
		errors.Is(err, changeset.ErrDuplicate),
		errors.Is(err, producers.ErrConflict):
		status = http.StatusConflict
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: msg})
}
