package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canstralian/GitUpgradeNavigator/internal/config"
	"github.com/canstralian/GitUpgradeNavigator/internal/models"
	"github.com/canstralian/GitUpgradeNavigator/internal/plans"
	"github.com/canstralian/GitUpgradeNavigator/internal/ratelimit"
	"github.com/canstralian/GitUpgradeNavigator/internal/services"
	"github.com/canstralian/GitUpgradeNavigator/internal/storage"
	"github.com/canstralian/GitUpgradeNavigator/internal/templates"
)

const testKey = "sk_test_admin_key_1234"

func newTestServer(t *testing.T) (*Server, *storage.MemoryRepository) {
	t.Helper()

	repo := storage.NewMemoryRepository()
	err := repo.CreateClient(context.Background(), &models.ApiClient{
		Name:        "test-admin",
		ApiKey:      testKey,
		IsActive:    true,
		Permissions: []string{"*"},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}

	loader := templates.NewLoader()
	manager := plans.NewManager(repo, loader)
	srv := NewServer(config.ServerConfig{}, manager, loader, repo, services.NewRegistry(), nil)
	return srv, repo
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testKey)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *apiError       `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v\n%s", err, rec.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("request failed: %+v", envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
}

func createAssessment(t *testing.T, srv *Server) *models.Assessment {
	t.Helper()

	rec := doRequest(t, srv, "POST", "/api/v1/assessments", models.CreateAssessmentRequest{
		TeamSize:          "2-5",
		BranchingStrategy: "none",
		BranchProtection:  models.ProtectionNone,
		SkillLevel:        "beginner",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var a models.Assessment
	decodeData(t, rec, &a)
	return &a
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/ready", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/plans", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/plans", nil)
	req.Header.Set("X-API-Key", "sk_wrong")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad key, got %d", rec.Code)
	}
}

func TestPermissionDenied(t *testing.T) {
	srv, repo := newTestServer(t)

	err := repo.CreateClient(context.Background(), &models.ApiClient{
		Name:        "reader",
		ApiKey:      "sk_read_only_client_1",
		IsActive:    true,
		Permissions: []string{"plans:read"},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/plans/generate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-API-Key", "sk_read_only_client_1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}

	// Read within the granted scope still works
	req = httptest.NewRequest("GET", "/api/v1/plans", nil)
	req.Header.Set("X-API-Key", "sk_read_only_client_1")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCreateAssessmentValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, "POST", "/api/v1/assessments", models.CreateAssessmentRequest{
		SkillLevel: "beginner",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing teamSize, got %d", rec.Code)
	}
}

func TestAssessmentLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createAssessment(t, srv)
	if created.ID == 0 {
		t.Fatal("expected generated assessment ID")
	}

	rec := doRequest(t, srv, "GET", fmt.Sprintf("/api/v1/assessments/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got models.Assessment
	decodeData(t, rec, &got)
	if got.TeamSize != "2-5" {
		t.Errorf("unexpected assessment: %+v", got)
	}

	rec = doRequest(t, srv, "GET", "/api/v1/assessments/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(t, srv, "GET", "/api/v1/assessments/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-integer id, got %d", rec.Code)
	}
}

func TestGeneratePlanEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	a := createAssessment(t, srv)

	rec := doRequest(t, srv, "POST", "/api/v1/plans/generate", models.GeneratePlanRequest{
		AssessmentID: a.ID,
		WorkflowType: models.WorkflowGitFlow,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var plan models.UpgradePlan
	decodeData(t, rec, &plan)
	if plan.Status != models.PlanPending {
		t.Errorf("expected pending plan, got %s", plan.Status)
	}
	if len(plan.Steps) == 0 {
		t.Error("plan has no steps")
	}

	// Unknown workflow type
	rec = doRequest(t, srv, "POST", "/api/v1/plans/generate", models.GeneratePlanRequest{
		AssessmentID: a.ID,
		WorkflowType: "mercurial",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown template, got %d", rec.Code)
	}

	// Unknown assessment
	rec = doRequest(t, srv, "POST", "/api/v1/plans/generate", models.GeneratePlanRequest{
		AssessmentID: 999,
		WorkflowType: models.WorkflowGitFlow,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown assessment, got %d", rec.Code)
	}
}

func TestToggleStepEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	a := createAssessment(t, srv)

	rec := doRequest(t, srv, "POST", "/api/v1/plans/generate", models.GeneratePlanRequest{
		AssessmentID: a.ID,
		WorkflowType: models.WorkflowTrunk,
	})
	var plan models.UpgradePlan
	decodeData(t, rec, &plan)

	rec = doRequest(t, srv, "POST", fmt.Sprintf("/api/v1/plans/%d/steps/1/toggle", plan.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var toggled models.UpgradePlan
	decodeData(t, rec, &toggled)
	if !toggled.Steps[0].Completed {
		t.Error("step 1 not completed after toggle")
	}
	if toggled.Status != models.PlanInProgress {
		t.Errorf("expected in-progress, got %s", toggled.Status)
	}

	// Unknown step is accepted but changes nothing
	rec = doRequest(t, srv, "POST", fmt.Sprintf("/api/v1/plans/%d/steps/9999/toggle", plan.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown step, got %d", rec.Code)
	}
	var unchanged models.UpgradePlan
	decodeData(t, rec, &unchanged)
	if unchanged.Progress != toggled.Progress {
		t.Error("unknown step toggle changed progress")
	}

	rec = doRequest(t, srv, "POST", "/api/v1/plans/999/steps/1/toggle", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown plan, got %d", rec.Code)
	}
}

func TestUpdatePlanEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	a := createAssessment(t, srv)

	rec := doRequest(t, srv, "POST", "/api/v1/plans/generate", models.GeneratePlanRequest{
		AssessmentID: a.ID,
		WorkflowType: models.WorkflowGitFlow,
	})
	var plan models.UpgradePlan
	decodeData(t, rec, &plan)

	title := "Renamed Plan"
	rec = doRequest(t, srv, "PATCH", fmt.Sprintf("/api/v1/plans/%d", plan.ID), models.PlanMetadataUpdate{Title: &title})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.UpgradePlan
	decodeData(t, rec, &updated)
	if updated.Title != title {
		t.Errorf("title not updated: %q", updated.Title)
	}
	if len(updated.Steps) != len(plan.Steps) {
		t.Error("metadata update changed steps")
	}
}

func TestListPlansEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	a := createAssessment(t, srv)

	for i := 0; i < 2; i++ {
		doRequest(t, srv, "POST", "/api/v1/plans/generate", models.GeneratePlanRequest{
			AssessmentID: a.ID,
			WorkflowType: models.WorkflowGitFlow,
		})
	}

	rec := doRequest(t, srv, "GET", "/api/v1/plans?status=pending", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list struct {
		Plans []models.UpgradePlan `json:"plans"`
		Total int                  `json:"total"`
	}
	decodeData(t, rec, &list)
	if list.Total != 2 {
		t.Errorf("expected 2 plans, got %d", list.Total)
	}

	rec = doRequest(t, srv, "GET", "/api/v1/plans?limit=1", nil)
	decodeData(t, rec, &list)
	if len(list.Plans) != 1 {
		t.Errorf("limit not applied, got %d plans", len(list.Plans))
	}
}

func TestResourcesEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	if err := storage.SeedResources(context.Background(), repo); err != nil {
		t.Fatalf("failed to seed resources: %v", err)
	}

	rec := doRequest(t, srv, "GET", "/api/v1/resources", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list struct {
		Resources []models.Resource `json:"resources"`
		Total     int               `json:"total"`
	}
	decodeData(t, rec, &list)
	if list.Total != 6 {
		t.Errorf("expected 6 seeded resources, got %d", list.Total)
	}

	rec = doRequest(t, srv, "GET", "/api/v1/resources?category=automation", nil)
	decodeData(t, rec, &list)
	for _, res := range list.Resources {
		if res.Category != "automation" {
			t.Errorf("category filter leaked %q", res.Category)
		}
	}
}

func TestTemplatesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, "GET", "/api/v1/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list struct {
		Templates []models.WorkflowTemplate `json:"templates"`
		Total     int                       `json:"total"`
	}
	decodeData(t, rec, &list)
	if list.Total != 3 {
		t.Errorf("expected 3 templates, got %d", list.Total)
	}

	rec = doRequest(t, srv, "GET", "/api/v1/templates/gitflow", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tmpl models.WorkflowTemplate
	decodeData(t, rec, &tmpl)
	if tmpl.Name != "GitFlow" {
		t.Errorf("unexpected template %q", tmpl.Name)
	}

	rec = doRequest(t, srv, "GET", "/api/v1/templates/mercurial", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	repo := storage.NewMemoryRepository()
	err := repo.CreateClient(context.Background(), &models.ApiClient{
		Name:        "limited",
		ApiKey:      testKey,
		IsActive:    true,
		Permissions: []string{"*"},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}

	store := ratelimit.NewMemoryStore(time.Minute)
	defer store.Close()

	limiter := NewRateLimitMiddleware(store, config.RateLimitConfig{
		Enabled:  true,
		Requests: 3,
		Window:   time.Minute,
	})

	loader := templates.NewLoader()
	manager := plans.NewManager(repo, loader)
	srv := NewServer(config.ServerConfig{}, manager, loader, repo, services.NewRegistry(), limiter)

	for i := 1; i <= 3; i++ {
		rec := doRequest(t, srv, "GET", "/api/v1/plans", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := doRequest(t, srv, "GET", "/api/v1/plans", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after budget spent, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("unexpected remaining header %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}
