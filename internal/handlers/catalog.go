package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/importer"
	"github.com/cenniki/pricelist-service/internal/pricediff"
	"github.com/cenniki/pricelist-service/internal/producers"
	"github.com/cenniki/pricelist-service/internal/storage"
)

// ProducerInfo describes a configured producer
type ProducerInfo struct {
	Slug   string `json:"slug" jsonschema:"required"`
	Name   string `json:"name" jsonschema:"required"`
	Layout string `json:"layout" jsonschema:"required,enum=category,enum=elements,enum=flat,enum=rows"`
}

// ListProducersResponse lists configured producers
type ListProducersResponse struct {
	Success   bool           `json:"success" jsonschema:"required"`
	Producers []ProducerInfo `json:"producers" jsonschema:"required"`
}

// DiffRequest compares two versions of a catalog. Layout may be omitted when
// producerSlug names a configured producer.
type DiffRequest struct {
	Layout          string          `json:"layout"`
	ProducerSlug    string          `json:"producerSlug,omitempty"`
	RowPriceColumns []string        `json:"rowPriceColumns,omitempty"`
	OriginalData    json.RawMessage `json:"originalData" binding:"required" jsonschema:"required" swaggertype:"object"`
	CurrentData     json.RawMessage `json:"currentData" binding:"required" jsonschema:"required" swaggertype:"object"`
}

// DiffResponse lists price-cell changes between two catalog versions
type DiffResponse struct {
	Success    bool                     `json:"success" jsonschema:"required"`
	Changes    []pricediff.AtomicChange `json:"changes" jsonschema:"required"`
	Summary    pricediff.Summary        `json:"summary" jsonschema:"required"`
	Structural pricediff.Structural     `json:"structural" jsonschema:"required"`
}

// PutCatalogResponse reports the changes made by a catalog replacement
type PutCatalogResponse struct {
	Success    bool                     `json:"success" jsonschema:"required"`
	Changes    []pricediff.AtomicChange `json:"changes" jsonschema:"required"`
	Summary    pricediff.Summary        `json:"summary" jsonschema:"required"`
	Structural pricediff.Structural     `json:"structural" jsonschema:"required"`
	Version    string                   `json:"version" jsonschema:"required"`
}

// ImportResponse is a change preview built from an uploaded price list
type ImportResponse struct {
	Success   bool                     `json:"success" jsonschema:"required"`
	Format    string                   `json:"format" jsonschema:"required,enum=xlsx,enum=csv,enum=html,enum=pdf"`
	Rows      int                      `json:"rows" jsonschema:"required"`
	Warnings  []importer.Warning       `json:"warnings" jsonschema:"required"`
	Changes   []pricediff.AtomicChange `json:"changes" jsonschema:"required"`
	Summary   pricediff.Summary        `json:"summary" jsonschema:"required"`
	Unmatched []string                 `json:"unmatched" jsonschema:"required"`
	// Version is the catalog version the preview was computed against
	Version string `json:"version" jsonschema:"required"`
}

// ListImportsResponse lists a producer's archived uploads, newest first
type ListImportsResponse struct {
	Success bool                `json:"success" jsonschema:"required"`
	Imports []*storage.FileInfo `json:"imports" jsonschema:"required"`
}

// PruneImportsResponse reports how many archived uploads were removed
type PruneImportsResponse struct {
	Success bool `json:"success" jsonschema:"required"`
	Deleted int  `json:"deleted" jsonschema:"required"`
}

func etag(version string) string {
	return `"` + version + `"`
}

// parseETag strips quotes and the weak prefix
func parseETag(header string) string {
	header = strings.TrimSpace(header)
	header = strings.TrimPrefix(header, "W/")
	return strings.Trim(header, `"`)
}

// ListProducers lists configured producers
// @Summary List producers
// @Tags producers
// @Produce json
// @Success 200 {object} ListProducersResponse
// @Security BearerAuth
// @Router /producers [get]
func (h *Handler) ListProducers(c *gin.Context) {
	list := h.catalogs.Registry().List()
	out := make([]ProducerInfo, 0, len(list))
	for _, p := range list {
		out = append(out, ProducerInfo{Slug: p.Slug, Name: p.Name, Layout: string(p.Layout)})
	}

	c.JSON(http.StatusOK, ListProducersResponse{Success: true, Producers: out})
}

// GetCatalog returns a producer's catalog document as stored
// @Summary Get a producer catalog
// @Description Returns the stored JSON document. The ETag header carries the catalog version.
// @Tags producers
// @Produce json
// @Param slug path string true "Producer slug"
// @Success 200 {object} object
// @Success 304 "Not modified"
// @Failure 404 {object} ErrorResponse "Unknown producer or no catalog"
// @Security BearerAuth
// @Router /producers/{slug}/catalog [get]
func (h *Handler) GetCatalog(c *gin.Context) {
	snap, err := h.catalogs.Load(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("ETag", etag(snap.Version))
	if parseETag(c.GetHeader("If-None-Match")) == snap.Version {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", snap.Document.Bytes())
}

// PutCatalog replaces a producer's catalog and reports the price changes it made
// @Summary Replace a producer catalog
// @Description Stores the document immediately. With If-Match the write only succeeds if the stored version still matches.
// @Tags producers
// @Accept json
// @Produce json
// @Param slug path string true "Producer slug"
// @Param If-Match header string false "Expected catalog version"
// @Param document body object true "Catalog document"
// @Success 200 {object} PutCatalogResponse
// @Failure 400 {object} ErrorResponse "Document does not match the producer layout"
// @Failure 404 {object} ErrorResponse "Unknown producer"
// @Failure 409 {object} ErrorResponse "Catalog changed since it was read"
// @Security BearerAuth
// @Router /producers/{slug}/catalog [put]
func (h *Handler) PutCatalog(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload))
	if err != nil {
		badRequest(c, fmt.Sprintf("failed to read body: %v", err))
		return
	}
	if !json.Valid(raw) {
		badRequest(c, "body is not valid JSON")
		return
	}

	newDoc, err := h.catalogs.Decode(slug, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	expected := parseETag(c.GetHeader("If-Match"))
	var diff pricediff.Result
	version, err := h.catalogs.Update(ctx, slug, func(snap *producers.Snapshot) (*catalog.Document, error) {
		if expected != "" && expected != snap.Version {
			return nil, fmt.Errorf("%w: %s", producers.ErrConflict, slug)
		}
		diff = pricediff.Diff(snap.Document, newDoc)
		return newDoc, nil
	})
	if errors.Is(err, producers.ErrCatalogNotFound) {
		if expected != "" {
			respondError(c, fmt.Errorf("%w: %s has no catalog", producers.ErrConflict, slug))
			return
		}
		diff = pricediff.Diff(nil, newDoc)
		version, err = h.catalogs.Save(ctx, slug, newDoc, "")
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("ETag", etag(version))
	c.JSON(http.StatusOK, PutCatalogResponse{
		Success:    true,
		Changes:    diff.Changes,
		Summary:    diff.Summary,
		Structural: diff.Structural,
		Version:    version,
	})
}

// ImportCatalog previews the price changes contained in an uploaded price list
// @Summary Preview an uploaded price list
// @Description Parses an XLSX, CSV, HTML or PDF price list and matches its rows against the stored catalog. Nothing is written to the catalog.
// @Tags producers
// @Accept multipart/form-data
// @Produce json
// @Param slug path string true "Producer slug"
// @Param file formData file true "Price list"
// @Success 200 {object} ImportResponse
// @Failure 400 {object} ErrorResponse "Unreadable or unsupported file"
// @Failure 404 {object} ErrorResponse "Unknown producer or no catalog"
// @Security BearerAuth
// @Router /producers/{slug}/import [post]
func (h *Handler) ImportCatalog(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	producer, err := h.catalogs.Registry().Get(slug)
	if err != nil {
		respondError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if header.Size > h.maxUpload {
		badRequest(c, fmt.Sprintf("file exceeds %d bytes", h.maxUpload))
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		respondError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	snap, err := h.catalogs.Load(ctx, slug)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := importer.New(producer.RowPriceColumns, h.logger).Import(header.Filename, content)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.uploads != nil {
		now := time.Now()
		key := storage.BuildImportKey(slug, now, header.Filename)
		meta := &storage.Metadata{
			ContentType:  header.Header.Get("Content-Type"),
			OriginalName: header.Filename,
			ProducerSlug: slug,
			UploadedAt:   now,
		}
		if err := h.uploads.Put(ctx, key, content, meta); err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("Failed to archive import")
		}
	}

	projection := importer.Project(snap.Document, result.Document)
	warnings := result.Warnings
	if warnings == nil {
		warnings = []importer.Warning{}
	}

	c.JSON(http.StatusOK, ImportResponse{
		Success:   true,
		Format:    string(result.Format),
		Rows:      result.Rows,
		Warnings:  warnings,
		Changes:   projection.Changes,
		Summary:   projection.Summary,
		Unmatched: projection.Unmatched,
		Version:   snap.Version,
	})
}

// Diff compares two catalog documents
// @Summary Diff two catalog versions
// @Tags producers
// @Accept json
// @Produce json
// @Param request body DiffRequest true "Documents"
// @Success 200 {object} DiffResponse
// @Failure 400 {object} ErrorResponse "Unknown layout or document shape"
// @Security BearerAuth
// @Router /diff [post]
func (h *Handler) Diff(c *gin.Context) {
	var req DiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var (
		layout catalog.Layout
		opts   []catalog.Option
		err    error
	)
	if req.Layout != "" {
		layout, err = catalog.ParseLayout(req.Layout)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if req.ProducerSlug != "" {
		p, err := h.catalogs.Registry().Get(req.ProducerSlug)
		if err != nil {
			respondError(c, err)
			return
		}
		if layout == "" {
			layout = p.Layout
		}
		opts = p.DecodeOptions()
	}
	if layout == "" {
		badRequest(c, "layout or producerSlug is required")
		return
	}
	if len(req.RowPriceColumns) > 0 {
		opts = append(opts, catalog.WithRowPriceColumns(req.RowPriceColumns))
	}

	oldDoc, err := catalog.Decode(layout, req.OriginalData, opts...)
	if err != nil {
		respondError(c, fmt.Errorf("originalData: %w", err))
		return
	}
	newDoc, err := catalog.Decode(layout, req.CurrentData, opts...)
	if err != nil {
		respondError(c, fmt.Errorf("currentData: %w", err))
		return
	}

	res := pricediff.Diff(oldDoc, newDoc)
	c.JSON(http.StatusOK, DiffResponse{
		Success:    true,
		Changes:    res.Changes,
		Summary:    res.Summary,
		Structural: res.Structural,
	})
}

// ListImports lists the archived uploads of a producer
// @Summary List archived uploads
// @Tags producers
// @Produce json
// @Param slug path string true "Producer slug"
// @Success 200 {object} ListImportsResponse
// @Failure 404 {object} ErrorResponse "Unknown producer"
// @Security BearerAuth
// @Router /producers/{slug}/imports [get]
func (h *Handler) ListImports(c *gin.Context) {
	slug := c.Param("slug")
	if _, err := h.catalogs.Registry().Get(slug); err != nil {
		respondError(c, err)
		return
	}

	imports := []*storage.FileInfo{}
	if h.uploads != nil {
		list, err := storage.ListImports(c.Request.Context(), h.uploads, slug)
		if err != nil {
			respondError(c, err)
			return
		}
		imports = list
	}

	c.JSON(http.StatusOK, ListImportsResponse{Success: true, Imports: imports})
}

// PruneImports removes archived uploads older than a date
// @Summary Prune archived uploads
// @Tags producers
// @Produce json
// @Param slug path string true "Producer slug"
// @Param before query string true "Remove uploads made before this date (YYYY-MM-DD or RFC3339)"
// @Success 200 {object} PruneImportsResponse
// @Failure 400 {object} ErrorResponse "Missing or invalid date"
// @Failure 404 {object} ErrorResponse "Unknown producer"
// @Security BearerAuth
// @Router /producers/{slug}/imports [delete]
func (h *Handler) PruneImports(c *gin.Context) {
	slug := c.Param("slug")
	if _, err := h.catalogs.Registry().Get(slug); err != nil {
		respondError(c, err)
		return
	}

	raw := c.Query("before")
	if raw == "" {
		badRequest(c, "before is required")
		return
	}
	before, err := parseDate("before", raw, h.changes.Location())
	if err != nil {
		respondError(c, err)
		return
	}

	deleted := 0
	if h.uploads != nil {
		deleted, err = storage.PruneImports(c.Request.Context(), h.uploads, slug, before)
		if err != nil {
			respondError(c, err)
			return
		}
		if deleted > 0 {
			h.logger.Info().Str("producer", slug).Int("count", deleted).Time("before", before).Msg("Pruned archived imports")
		}
	}

	c.JSON(http.StatusOK, PruneImportsResponse{Success: true, Deleted: deleted})
}
