package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cenniki/pricelist-service/internal/changeset"
	"github.com/cenniki/pricelist-service/internal/export"
	"github.com/cenniki/pricelist-service/internal/pricediff"
	"github.com/cenniki/pricelist-service/internal/reconcile"
)

// CreateScheduledChangeRequest schedules a change-set
type CreateScheduledChangeRequest struct {
	ProducerSlug  string                   `json:"producerSlug" binding:"required" jsonschema:"required"`
	ProducerName  string                   `json:"producerName"`
	ScheduledDate string                   `json:"scheduledDate" binding:"required" jsonschema:"required,description=RFC3339 datetime or YYYY-MM-DD"`
	Changes       []pricediff.AtomicChange `json:"changes" jsonschema:"required"`
	Summary       *pricediff.Summary       `json:"summary"`
}

// CreateScheduledChangeResponse returns the new change-set id
type CreateScheduledChangeResponse struct {
	Success bool   `json:"success" jsonschema:"required"`
	ID      string `json:"id" jsonschema:"required"`
}

// ListScheduledChangesRequest filters the change-set list
type ListScheduledChangesRequest struct {
	Status string `form:"status" json:"status" jsonschema:"enum=pending,enum=applied,enum=cancelled,enum=all"`
}

// ListScheduledChangesResponse lists change-sets
type ListScheduledChangesResponse struct {
	Success bool                   `json:"success" jsonschema:"required"`
	Changes []*changeset.ChangeSet `json:"changes" jsonschema:"required"`
}

// PatchScheduledChangeRequest reschedules a change-set or applies it immediately
type PatchScheduledChangeRequest struct {
	ID            string `json:"id" binding:"required" jsonschema:"required"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
	ApplyNow      bool   `json:"applyNow,omitempty"`
}

// PatchScheduledChangeResponse returns the updated change-set
type PatchScheduledChangeResponse struct {
	Success bool                 `json:"success" jsonschema:"required"`
	Change  *changeset.ChangeSet `json:"change" jsonschema:"required"`
	Report  *reconcile.Report    `json:"report,omitempty"`
}

// SuccessResponse is returned by operations without a payload
type SuccessResponse struct {
	Success bool `json:"success" jsonschema:"required"`
}

// ApplyDueResponse reports a run over due change-sets
type ApplyDueResponse struct {
	Success bool     `json:"success" jsonschema:"required"`
	Applied []string `json:"applied" jsonschema:"required"`
	Errors  []string `json:"errors" jsonschema:"required"`
}

// DueStatusResponse counts change-sets waiting to be applied
type DueStatusResponse struct {
	Success      bool `json:"success" jsonschema:"required"`
	PendingCount int  `json:"pendingCount" jsonschema:"required"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseScheduledDate accepts an RFC3339 datetime or a bare date in loc
func parseScheduledDate(s string, loc *time.Location) (time.Time, error) {
	return parseDate("scheduledDate", s, loc)
}

func parseDate(field, s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %q is not a valid date", changeset.ErrValidation, field, s)
}

// CreateScheduledChange schedules a new change-set
// @Summary Schedule a change-set
// @Description Stores a pending change-set for a producer. An identical pending set is rejected.
// @Tags scheduled-changes
// @Accept json
// @Produce json
// @Param request body CreateScheduledChangeRequest true "Change-set"
// @Success 201 {object} CreateScheduledChangeResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 404 {object} ErrorResponse "Unknown producer"
// @Failure 409 {object} ErrorResponse "Duplicate change-set"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /scheduled-changes [post]
func (h *Handler) CreateScheduledChange(c *gin.Context) {
	var req CreateScheduledChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	date, err := parseScheduledDate(req.ScheduledDate, h.changes.Location())
	if err != nil {
		respondError(c, err)
		return
	}

	producer, err := h.catalogs.Registry().Get(req.ProducerSlug)
	if err != nil {
		respondError(c, err)
		return
	}
	name := req.ProducerName
	if name == "" {
		name = producer.Name
	}

	cs, err := h.changes.Create(c.Request.Context(), changeset.CreateInput{
		Producer:      changeset.Producer{Slug: producer.Slug, Name: name},
		ScheduledDate: date,
		Changes:       req.Changes,
		Summary:       req.Summary,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateScheduledChangeResponse{Success: true, ID: cs.ID})
}

// ListScheduledChanges lists change-sets by status
// @Summary List scheduled change-sets
// @Tags scheduled-changes
// @Produce json
// @Param status query string false "Status filter" Enums(pending, applied, cancelled, all) default(all)
// @Success 200 {object} ListScheduledChangesResponse
// @Failure 400 {object} ErrorResponse "Unknown status"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /scheduled-changes [get]
func (h *Handler) ListScheduledChanges(c *gin.Context) {
	var req ListScheduledChangesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	status, err := changeset.ParseStatusFilter(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	sets, err := h.changes.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	if sets == nil {
		sets = []*changeset.ChangeSet{}
	}

	c.JSON(http.StatusOK, ListScheduledChangesResponse{Success: true, Changes: sets})
}

// PatchScheduledChange reschedules a pending change-set or applies it now
// @Summary Reschedule or force-apply a change-set
// @Description Send either scheduledDate to move the activation day, or applyNow=true to apply immediately.
// @Tags scheduled-changes
// @Accept json
// @Produce json
// @Param request body PatchScheduledChangeRequest true "Patch"
// @Success 200 {object} PatchScheduledChangeResponse
// @Failure 400 {object} ErrorResponse "Malformed patch"
// @Failure 404 {object} ErrorResponse "Change-set or catalog not found"
// @Failure 409 {object} ErrorResponse "Change-set is no longer pending"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /scheduled-changes [patch]
func (h *Handler) PatchScheduledChange(c *gin.Context) {
	var req PatchScheduledChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	hasDate := strings.TrimSpace(req.ScheduledDate) != ""
	switch {
	case req.ApplyNow && hasDate:
		badRequest(c, "scheduledDate and applyNow are mutually exclusive")
		return
	case !req.ApplyNow && !hasDate:
		badRequest(c, "either scheduledDate or applyNow is required")
		return
	}

	ctx := c.Request.Context()

	if req.ApplyNow {
		cs, report, err := h.trigger.ApplyNow(ctx, req.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, PatchScheduledChangeResponse{Success: true, Change: cs, Report: &report})
		return
	}

	date, err := parseScheduledDate(req.ScheduledDate, h.changes.Location())
	if err != nil {
		respondError(c, err)
		return
	}
	cs, err := h.changes.Reschedule(ctx, req.ID, date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PatchScheduledChangeResponse{Success: true, Change: cs})
}

// DeleteScheduledChange removes a pending change-set
// @Summary Delete a pending change-set
// @Tags scheduled-changes
// @Produce json
// @Param id query string true "Change-set id"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Missing id"
// @Failure 404 {object} ErrorResponse "Change-set not found"
// @Failure 409 {object} ErrorResponse "Change-set is no longer pending"
// @Security BearerAuth
// @Router /scheduled-changes [delete]
func (h *Handler) DeleteScheduledChange(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		badRequest(c, "id is required")
		return
	}

	if err := h.changes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ApplyDue applies every due change-set
// @Summary Apply due change-sets
// @Description Applies all pending change-sets whose activation day has come. Failures are reported per set.
// @Tags scheduled-changes
// @Produce json
// @Success 200 {object} ApplyDueResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /scheduled-changes/apply [post]
func (h *Handler) ApplyDue(c *gin.Context) {
	result, err := h.trigger.RunDue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApplyDueResponse{Success: true, Applied: result.Applied, Errors: result.Errors})
}

// DueStatus counts change-sets that are due
// @Summary Count due change-sets
// @Tags scheduled-changes
// @Produce json
// @Success 200 {object} DueStatusResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /scheduled-changes/apply [get]
func (h *Handler) DueStatus(c *gin.Context) {
	n, err := h.trigger.DueCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DueStatusResponse{Success: true, PendingCount: n})
}

// ExportScheduledChange downloads a change-set as a spreadsheet
// @Summary Export a change-set as XLSX
// @Tags scheduled-changes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Change-set id"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse "Change-set not found"
// @Security BearerAuth
// @Router /scheduled-changes/{id}/export [get]
func (h *Handler) ExportScheduledChange(c *gin.Context) {
	cs, err := h.changes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteChangeSet(&buf, cs); err != nil {
		respondError(c, fmt.Errorf("failed to render export: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(cs)))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
