package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/changeset"
	"github.com/cenniki/pricelist-service/internal/export"
	"github.com/cenniki/pricelist-service/internal/pricediff"
	"github.com/cenniki/pricelist-service/internal/producers"
	"github.com/cenniki/pricelist-service/internal/reconcile"
	"github.com/cenniki/pricelist-service/internal/scheduler"
	"github.com/cenniki/pricelist-service/internal/storage"
)

const (
	chairs = `{"title":"Cennik","categories":{"krzesła":{"X":{"prices":{"Grupa I":100}}}}}`
	rows   = `{"Arkusz1":[{"MODEL":"M1","grupa I":500,"opis":"a"}]}`
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type apiFixture struct {
	router  *gin.Engine
	changes *changeset.Service
	trigger *scheduler.Trigger
	store   *storage.LocalStorage
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, storage.CatalogKey("meble"), []byte(chairs), nil))
	require.NoError(t, store.Put(ctx, storage.CatalogKey("bos"), []byte(rows), nil))

	reg, err := producers.NewRegistry([]producers.Producer{
		{Slug: "meble", Name: "Meble", Layout: catalog.LayoutCategory},
		{Slug: "bos", Name: "Bos", Layout: catalog.LayoutRows},
		{Slug: "nowy", Name: "Nowy", Layout: catalog.LayoutFlat},
	})
	require.NoError(t, err)

	changes := changeset.NewService(changeset.NewMemoryStore(), changeset.Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}, nil)
	catalogs := producers.NewRepository(reg, store, nil)
	trigger := scheduler.NewTrigger(changes, catalogs, reconcile.NewEngine(reconcile.PolicyOverwrite, nil), nil, nil, scheduler.Options{})
	t.Cleanup(trigger.Wait)

	h := New(Deps{
		ChangeSets: changes,
		Trigger:    trigger,
		Catalogs:   catalogs,
		Uploads:    store,
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.Register(router.Group("/api"))

	return &apiFixture{router: router, changes: changes, trigger: trigger, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var chairChange = pricediff.AtomicChange{Category: "krzesła", Product: "X", PriceGroup: "Grupa I", OldPrice: 100, NewPrice: 110}

func (f *apiFixture) create(t *testing.T, date string, changes ...pricediff.AtomicChange) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/scheduled-changes", CreateScheduledChangeRequest{
		ProducerSlug:  "meble",
		ScheduledDate: date,
		Changes:       changes,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody[CreateScheduledChangeResponse](t, w)
	assert.True(t, resp.Success)
	return resp.ID
}

func TestCreateScheduledChange(t *testing.T) {
	f := newAPIFixture(t)
	id := f.create(t, "2026-03-20", chairChange)
	assert.Regexp(t, `^chg_`, id)

	cs, err := f.changes.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Meble", cs.ProducerName, "name defaults to the configured producer")
	assert.Equal(t, changeset.StatusPending, cs.Status)
	assert.Equal(t, 10.0, cs.Summary.AvgChangePercent)
}

func TestCreateScheduledChangeErrors(t *testing.T) {
	f := newAPIFixture(t)
	f.create(t, "2026-03-20", chairChange)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"malformed json", `{"producerSlug":`, http.StatusBadRequest},
		{"missing date", CreateScheduledChangeRequest{ProducerSlug: "meble", Changes: []pricediff.AtomicChange{chairChange}}, http.StatusBadRequest},
		{"bad date", CreateScheduledChangeRequest{ProducerSlug: "meble", ScheduledDate: "jutro", Changes: []pricediff.AtomicChange{chairChange}}, http.StatusBadRequest},
		{"no changes", CreateScheduledChangeRequest{ProducerSlug: "meble", ScheduledDate: "2026-03-21"}, http.StatusBadRequest},
		{"unknown producer", CreateScheduledChangeRequest{ProducerSlug: "nikt", ScheduledDate: "2026-03-21", Changes: []pricediff.AtomicChange{chairChange}}, http.StatusNotFound},
		{"duplicate", CreateScheduledChangeRequest{ProducerSlug: "meble", ScheduledDate: "2026-03-20T15:00:00Z", Changes: []pricediff.AtomicChange{chairChange}}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/scheduled-changes", tt.body, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			resp := decodeBody[ErrorResponse](t, w)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestListScheduledChanges(t *testing.T) {
	f := newAPIFixture(t)
	f.create(t, "2026-03-20", chairChange)

	w := f.do(t, http.MethodGet, "/api/scheduled-changes?status=pending", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[ListScheduledChangesResponse](t, w)
	assert.Len(t, resp.Changes, 1)

	w = f.do(t, http.MethodGet, "/api/scheduled-changes?status=applied", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[ListScheduledChangesResponse](t, w).Changes)

	w = f.do(t, http.MethodGet, "/api/scheduled-changes?status=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchReschedule(t *testing.T) {
	f := newAPIFixture(t)
	id := f.create(t, "2026-03-20", chairChange)

	w := f.do(t, http.MethodPatch, "/api/scheduled-changes", PatchScheduledChangeRequest{ID: id, ScheduledDate: "2026-04-01"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[PatchScheduledChangeResponse](t, w)
	assert.Equal(t, "2026-04-01", resp.Change.ScheduledDate.Format("2006-01-02"))
	assert.Equal(t, changeset.StatusPending, resp.Change.Status)
	assert.Nil(t, resp.Report)
}

func TestPatchValidation(t *testing.T) {
	f := newAPIFixture(t)
	id := f.create(t, "2026-03-20", chairChange)

	tests := []struct {
		name string
		body PatchScheduledChangeRequest
		want int
	}{
		{"neither", PatchScheduledChangeRequest{ID: id}, http.StatusBadRequest},
		{"both", PatchScheduledChangeRequest{ID: id, ScheduledDate: "2026-04-01", ApplyNow: true}, http.StatusBadRequest},
		{"bad date", PatchScheduledChangeRequest{ID: id, ScheduledDate: "01/04/2026"}, http.StatusBadRequest},
		{"unknown id", PatchScheduledChangeRequest{ID: "chg_missing", ScheduledDate: "2026-04-01"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPatch, "/api/scheduled-changes", tt.body, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	cs, err := f.changes.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-20", cs.ScheduledDate.Format("2006-01-02"), "rejected patches leave the set untouched")
}

func TestPatchApplyNow(t *testing.T) {
	f := newAPIFixture(t)
	id := f.create(t, "2026-12-24", chairChange)

	w := f.do(t, http.MethodPatch, "/api/scheduled-changes", PatchScheduledChangeRequest{ID: id, ApplyNow: true}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[PatchScheduledChangeResponse](t, w)
	assert.Equal(t, changeset.StatusApplied, resp.Change.Status)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 1, resp.Report.Applied)

	raw, err := f.store.Get(context.Background(), storage.CatalogKey("meble"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Grupa I":110`)

	// applied sets are immutable
	w = f.do(t, http.MethodPatch, "/api/scheduled-changes", PatchScheduledChangeRequest{ID: id, ScheduledDate: "2026-04-01"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(t, http.MethodDelete, "/api/scheduled-changes?id="+id, nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteScheduledChange(t *testing.T) {
	f := newAPIFixture(t)
	id := f.create(t, "2026-03-20", chairChange)

	w := f.do(t, http.MethodDelete, "/api/scheduled-changes", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/api/scheduled-changes?id="+id, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[SuccessResponse](t, w).Success)

	_, err := f.changes.Get(context.Background(), id)
	assert.True(t, errors.Is(err, changeset.ErrNotFound))

	w = f.do(t, http.MethodDelete, "/api/scheduled-changes?id="+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplyDue(t *testing.T) {
	f := newAPIFixture(t)
	f.create(t, "2026-03-10", chairChange)
	f.create(t, "2026-03-30", pricediff.AtomicChange{Category: "krzesła", Product: "X", PriceGroup: "Grupa I", OldPrice: 110, NewPrice: 120})

	w := f.do(t, http.MethodGet, "/api/scheduled-changes/apply", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeBody[DueStatusResponse](t, w).PendingCount)

	w = f.do(t, http.MethodPost, "/api/scheduled-changes/apply", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[ApplyDueResponse](t, w)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Applied, 1)
	assert.Empty(t, resp.Errors)

	w = f.do(t, http.MethodGet, "/api/scheduled-changes/apply", nil, nil)
	assert.Equal(t, 0, decodeBody[DueStatusResponse](t, w).PendingCount)
}

func TestExportScheduledChange(t *testing.T) {
	f := newAPIFixture(t)
	id := f.create(t, "2026-03-20", chairChange)

	w := f.do(t, http.MethodGet, "/api/scheduled-changes/"+id+"/export", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "meble-2026-03-20-"+id+".xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	w = f.do(t, http.MethodGet, "/api/scheduled-changes/chg_missing/export", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiff(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/diff", map[string]any{
		"layout":       "category",
		"originalData": json.RawMessage(chairs),
		"currentData":  json.RawMessage(`{"categories":{"krzesła":{"X":{"prices":{"Grupa I":90}},"Y":{"prices":{"Grupa I":1}}}}}`),
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[DiffResponse](t, w)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, -10.0, resp.Changes[0].PercentChange)
	assert.Equal(t, 1, resp.Summary.Decreased)
	assert.Equal(t, []pricediff.ProductRef{{Category: "krzesła", Product: "Y"}}, resp.Structural.Added)

	t.Run("producer layout", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/diff", map[string]any{
			"producerSlug": "bos",
			"originalData": json.RawMessage(rows),
			"currentData":  json.RawMessage(`{"Arkusz1":[{"MODEL":"M1","grupa I":550}]}`),
		}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decodeBody[DiffResponse](t, w).Changes, 1)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			body map[string]any
		}{
			{"unknown layout", map[string]any{"layout": "xml", "originalData": json.RawMessage(`{}`), "currentData": json.RawMessage(`{}`)}},
			{"no layout", map[string]any{"originalData": json.RawMessage(`{}`), "currentData": json.RawMessage(`{}`)}},
			{"shape mismatch", map[string]any{"layout": "rows", "originalData": json.RawMessage(`[]`), "currentData": json.RawMessage(`{}`)}},
		}
		for _, tt := range tests {
			w := f.do(t, http.MethodPost, "/api/diff", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, tt.name)
		}
	})
}

func TestListProducers(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/producers", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[ListProducersResponse](t, w)
	require.Len(t, resp.Producers, 3)
	assert.Equal(t, ProducerInfo{Slug: "bos", Name: "Bos", Layout: "rows"}, resp.Producers[0])
}

func TestGetCatalog(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/producers/meble/catalog", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, chairs, w.Body.String())
	tag := w.Header().Get("ETag")
	assert.Equal(t, etag(storage.ComputeChecksum([]byte(chairs))), tag)

	w = f.do(t, http.MethodGet, "/api/producers/meble/catalog", nil, map[string]string{"If-None-Match": tag})
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = f.do(t, http.MethodGet, "/api/producers/nowy/catalog", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, http.MethodGet, "/api/producers/nikt/catalog", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutCatalog(t *testing.T) {
	f := newAPIFixture(t)
	updated := `{"title":"Cennik","categories":{"krzesła":{"X":{"prices":{"Grupa I":120}}}}}`
	current := etag(storage.ComputeChecksum([]byte(chairs)))

	w := f.do(t, http.MethodPut, "/api/producers/meble/catalog", updated, map[string]string{"If-Match": `"stale"`})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPut, "/api/producers/meble/catalog", updated, map[string]string{"If-Match": current})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[PutCatalogResponse](t, w)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, 20.0, resp.Changes[0].PercentChange)
	assert.Equal(t, storage.ComputeChecksum([]byte(updated)), resp.Version)
	assert.Equal(t, etag(resp.Version), w.Header().Get("ETag"))

	// the previous version no longer matches
	w = f.do(t, http.MethodPut, "/api/producers/meble/catalog", chairs, map[string]string{"If-Match": current})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPut, "/api/producers/meble/catalog", `[1,2]`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPut, "/api/producers/meble/catalog", `{"categories":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutCatalogCreates(t *testing.T) {
	f := newAPIFixture(t)
	doc := `[{"name":"A","prices":{"p":10}}]`

	w := f.do(t, http.MethodPut, "/api/producers/nowy/catalog", doc, map[string]string{"If-Match": `"anything"`})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPut, "/api/producers/nowy/catalog", doc, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decodeBody[PutCatalogResponse](t, w).Changes)

	raw, err := f.store.Get(context.Background(), storage.CatalogKey("nowy"))
	require.NoError(t, err)
	assert.Equal(t, doc, string(raw))
}

func upload(t *testing.T, f *apiFixture, slug, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/producers/"+slug+"/import", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestImportCatalog(t *testing.T) {
	f := newAPIFixture(t)

	w := upload(t, f, "bos", "cennik.csv", "MODEL;grupa I\nM1;450\nM9;10\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[ImportResponse](t, w)
	assert.Equal(t, "csv", resp.Format)
	assert.Equal(t, 2, resp.Rows)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "cat:Arkusz1/prod:M1/grp:grupa I", resp.Changes[0].ID)
	assert.Equal(t, -10.0, resp.Changes[0].PercentChange)
	assert.Equal(t, []string{"M9"}, resp.Unmatched)
	assert.Equal(t, storage.ComputeChecksum([]byte(rows)), resp.Version)

	archived, err := f.store.List(context.Background(), "imports/bos/")
	require.NoError(t, err)
	assert.Len(t, archived, 1)

	raw, err := f.store.Get(context.Background(), storage.CatalogKey("bos"))
	require.NoError(t, err)
	assert.Equal(t, rows, string(raw), "preview does not touch the catalog")
}

func TestImportCatalogErrors(t *testing.T) {
	f := newAPIFixture(t)

	assert.Equal(t, http.StatusBadRequest, upload(t, f, "bos", "", "").Code, "missing file")
	assert.Equal(t, http.StatusBadRequest, upload(t, f, "bos", "notes.csv", "a,b\n1,2\n").Code, "no price rows")
	assert.Equal(t, http.StatusNotFound, upload(t, f, "nikt", "cennik.csv", "MODEL;grupa I\nM1;450\n").Code)
	assert.Equal(t, http.StatusNotFound, upload(t, f, "nowy", "cennik.csv", "MODEL;grupa I\nM1;450\n").Code, "no catalog")
}

func TestArchivedImports(t *testing.T) {
	f := newAPIFixture(t)
	require.Equal(t, http.StatusOK, upload(t, f, "bos", "cennik.csv", "MODEL;grupa I\nM1;450\n").Code)

	w := f.do(t, http.MethodGet, "/api/producers/bos/imports", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decodeBody[ListImportsResponse](t, w)
	require.Len(t, list.Imports, 1)
	require.NotNil(t, list.Imports[0].Metadata)
	assert.Equal(t, "cennik.csv", list.Imports[0].Metadata.OriginalName)
	assert.Equal(t, "bos", list.Imports[0].Metadata.ProducerSlug)

	w = f.do(t, http.MethodGet, "/api/producers/meble/imports", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[ListImportsResponse](t, w).Imports)

	w = f.do(t, http.MethodDelete, "/api/producers/bos/imports?before=2000-01-01", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, decodeBody[PruneImportsResponse](t, w).Deleted)

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	w = f.do(t, http.MethodDelete, "/api/producers/bos/imports?before="+tomorrow, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decodeBody[PruneImportsResponse](t, w).Deleted)

	w = f.do(t, http.MethodGet, "/api/producers/bos/imports", nil, nil)
	assert.Empty(t, decodeBody[ListImportsResponse](t, w).Imports)
}

func TestArchivedImportsErrors(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown producer list", http.MethodGet, "/api/producers/nikt/imports", http.StatusNotFound},
		{"unknown producer prune", http.MethodDelete, "/api/producers/nikt/imports?before=2026-01-01", http.StatusNotFound},
		{"missing date", http.MethodDelete, "/api/producers/bos/imports", http.StatusBadRequest},
		{"invalid date", http.MethodDelete, "/api/producers/bos/imports?before=wczoraj", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.do(t, tt.method, tt.path, nil, nil).Code)
		})
	}
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{changeset.ErrValidation, http.StatusBadRequest},
		{catalog.ErrShapeMismatch, http.StatusBadRequest},
		{changeset.ErrNotFound, http.StatusNotFound},
		{producers.ErrCatalogNotFound, http.StatusNotFound},
		{changeset.ErrImmutable, http.StatusConflict},
		{changeset.ErrDuplicate, http.StatusConflict},
		{producers.ErrConflict, http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
