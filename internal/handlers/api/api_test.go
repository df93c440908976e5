package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"loganalyser/internal/db"
	"loganalyser/internal/models"
	"loganalyser/internal/testutil"
)

var errStoreDown = errors.New("store unavailable")

// failingStore returns errStoreDown from every operation.
type failingStore struct{}

func (failingStore) CreateAnalysis(context.Context, *models.Analysis) error { return errStoreDown }
func (failingStore) GetAnalysis(context.Context, int64) (*models.Analysis, error) {
	return nil, errStoreDown
}
func (failingStore) ListAnalyses(context.Context) ([]models.Analysis, error) {
	return nil, errStoreDown
}
func (failingStore) SummarizeAnalyses(context.Context) (models.AnalysisSummary, error) {
	return models.AnalysisSummary{}, errStoreDown
}
func (failingStore) Ping(context.Context) error { return errStoreDown }
func (failingStore) Close() {}

func newTestApp(store db.Store) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	analyses := NewAnalysisHandler(store, nil)
	probes := NewProbeHandler(store)

	app.Get("/", probes.Root)
	app.Get("/health", probes.Liveness)
	app.Get("/readyz", probes.Readiness)
	app.Post("/analyse", analyses.Analyse)
	app.Get("/analyses", analyses.List)
	app.Get("/analyses/summary", analyses.Summary)
	app.Get("/analyses/:id", analyses.Get)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return resp.StatusCode, data
}

func analyseBody(t *testing.T, text string) string {
	t.Helper()
	b, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return string(b)
}

func TestAnalyse(t *testing.T) {
	app := newTestApp(testutil.SQLiteStore(t))

	text := "2026-01-12 14:33:01 ERROR Something failed\nINVALID LINE\n2026-01-12 14:33:02 INFO All good"
	status, body := doRequest(t, app, http.MethodPost, "/analyse", analyseBody(t, text))
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", status, body)
	}

	var got models.AnalyseResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if got.ID == 0 {
		t.Error("response missing id")
	}
	want := models.Counts{Error: 1, Warning: 0, Info: 1}
	if got.Counts != want {
		t.Errorf("counts = %+v, want %+v", got.Counts, want)
	}
	if got.TotalLines != 3 || got.MalformedLines != 1 {
		t.Errorf("total_lines = %d, malformed_lines = %d; want 3, 1", got.TotalLines, got.MalformedLines)
	}

	// Every level key is present even when zero
	if !strings.Contains(string(body), `"WARNING":0`) {
		t.Errorf("response %s missing zero WARNING count", body)
	}
}

func TestAnalyse_EmptyInput(t *testing.T) {
	app := newTestApp(testutil.SQLiteStore(t))

	tests := []struct {
		name string
		body string
	}{
		{"no body", ""},
		{"missing text", `{}`},
		{"null text", `{"text": null}`},
		{"empty text", `{"text": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, http.MethodPost, "/analyse", tt.body)
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", status, body)
			}

			var got models.AnalyseResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if got.Counts != (models.Counts{}) || got.TotalLines != 0 || got.MalformedLines != 0 {
				t.Errorf("response = %+v, want all-zero result", got)
			}
		})
	}
}

func TestAnalyse_InvalidBody(t *testing.T) {
	app := newTestApp(testutil.SQLiteStore(t))

	for _, body := range []string{`not json`, `{"text": 42}`} {
		status, resp := doRequest(t, app, http.MethodPost, "/analyse", body)
		if status != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400: %s", body, status, resp)
		}
	}
}

func TestAnalyse_StoreFailure(t *testing.T) {
	app := newTestApp(failingStore{})

	status, body := doRequest(t, app, http.MethodPost, "/analyse", analyseBody(t, "a b INFO d"))
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}

	var envelope map[string]string
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope["status"] != "error" || envelope["error"] == "" {
		t.Errorf("error envelope = %v", envelope)
	}
	if strings.Contains(string(body), errStoreDown.Error()) {
		t.Errorf("error response leaks store error: %s", body)
	}
}

func TestList(t *testing.T) {
	app := newTestApp(testutil.SQLiteStore(t))

	// Empty store lists as an empty array
	status, body := doRequest(t, app, http.MethodGet, "/analyses", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("empty list = %s, want []", body)
	}

	texts := []string{
		"a b ERROR d\na b WARNING d",
		"bad line",
	}
	var ids []int64
	for _, text := range texts {
		_, body := doRequest(t, app, http.MethodPost, "/analyse", analyseBody(t, text))
		var created models.AnalyseResponse
		if err := json.Unmarshal(body, &created); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		ids = append(ids, created.ID)
	}

	status, body = doRequest(t, app, http.MethodGet, "/analyses", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var all []models.Analysis
	if err := json.Unmarshal(body, &all); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("listed %d analyses, want 2", len(all))
	}
	for i, a := range all {
		if a.ID != ids[i] {
			t.Errorf("analysis %d id = %d, want %d", i, a.ID, ids[i])
		}
		if a.CreatedAt.IsZero() {
			t.Errorf("analysis %d missing created_at", i)
		}
	}
	if all[0].Counts != (models.Counts{Error: 1, Warning: 1}) || all[0].TotalLines != 2 {
		t.Errorf("first analysis = %+v", all[0])
	}
	if all[1].MalformedLines != 1 || all[1].TotalLines != 1 {
		t.Errorf("second analysis = %+v", all[1])
	}
}

func TestGet(t *testing.T) {
	store := testutil.SQLiteStore(t)
	app := newTestApp(store)

	created := testutil.CreateTestAnalysis(t, store, models.Result{Counts: models.Counts{Info: 1}, TotalLines: 1})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"existing", "/analyses/" + strconv.FormatInt(created.ID, 10), http.StatusOK},
		{"missing", "/analyses/" + strconv.FormatInt(created.ID+1, 10), http.StatusNotFound},
		{"not a number", "/analyses/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, http.MethodGet, tt.path, "")
			if status != tt.status {
				t.Errorf("status = %d, want %d: %s", status, tt.status, body)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	app := newTestApp(testutil.SQLiteStore(t))

	for _, text := range []string{"a b ERROR d\nx", "a b INFO d"} {
		if status, body := doRequest(t, app, http.MethodPost, "/analyse", analyseBody(t, text)); status != http.StatusOK {
			t.Fatalf("analyse status = %d: %s", status, body)
		}
	}

	status, body := doRequest(t, app, http.MethodGet, "/analyses/summary", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", status, body)
	}

	var got models.AnalysisSummary
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	want := models.AnalysisSummary{
		Analyses:       2,
		Counts:         models.Counts{Error: 1, Info: 1},
		TotalLines:     3,
		MalformedLines: 1,
	}
	if got != want {
		t.Errorf("summary = %+v, want %+v", got, want)
	}
}

func TestReadStoreFailures(t *testing.T) {
	app := newTestApp(failingStore{})

	tests := []struct {
		path   string
		status int
	}{
		{"/analyses", http.StatusInternalServerError},
		{"/analyses/1", http.StatusInternalServerError},
		{"/analyses/summary", http.StatusInternalServerError},
		{"/readyz", http.StatusServiceUnavailable},
		{"/health", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if status, body := doRequest(t, app, http.MethodGet, tt.path, ""); status != tt.status {
				t.Errorf("status = %d, want %d: %s", status, tt.status, body)
			}
		})
	}
}

func TestProbes(t *testing.T) {
	app := newTestApp(testutil.SQLiteStore(t))

	tests := []struct {
		path string
		want string
	}{
		{"/", `{"message":"Hello world"}`},
		{"/health", `{"status":"ok"}`},
		{"/readyz", `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := doRequest(t, app, http.MethodGet, tt.path, "")
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200", status)
			}
			if string(body) != tt.want {
				t.Errorf("body = %s, want %s", body, tt.want)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/teapot", func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		return errors.New("database password is hunter2")
	})

	status, body := doRequest(t, app, http.MethodGet, "/teapot", "")
	if status != fiber.StatusTeapot || !strings.Contains(string(body), "short and stout") {
		t.Errorf("fiber error: status = %d, body = %s", status, body)
	}

	status, body = doRequest(t, app, http.MethodGet, "/boom", "")
	if status != http.StatusInternalServerError || strings.Contains(string(body), "hunter2") {
		t.Errorf("plain error: status = %d, body = %s", status, body)
	}
}


func TestAnalyse_Postgres(t *testing.T) {
	store := testutil.PostgresStore(t)
	app := newTestApp(store)

	status, body := doRequest(t, app, http.MethodPost, "/analyse", analyseBody(t, "a b ERROR d\na b INFO d\nbroken"))
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", status, body)
	}

	status, body = doRequest(t, app, http.MethodGet, "/analyses", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", status, body)
	}

	var all []models.Analysis
	if err := json.Unmarshal(body, &all); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("listed %d analyses, want 1", len(all))
	}
	want := models.Result{Counts: models.Counts{Error: 1, Info: 1}, TotalLines: 3, MalformedLines: 1}
	if all[0].Result() != want {
		t.Errorf("stored result = %+v, want %+v", all[0].Result(), want)
	}
}
