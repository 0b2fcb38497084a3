package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canstralian/GitUpgradeNavigator/internal/api"
	"github.com/canstralian/GitUpgradeNavigator/internal/config"
	"github.com/canstralian/GitUpgradeNavigator/internal/models"
	"github.com/canstralian/GitUpgradeNavigator/internal/plans"
	"github.com/canstralian/GitUpgradeNavigator/internal/services"
	"github.com/canstralian/GitUpgradeNavigator/internal/storage"
	"github.com/canstralian/GitUpgradeNavigator/internal/templates"
)

const testKey = "sk_sdk_test_key_123456"

func newTestClient(t *testing.T) *Client {
	t.Helper()

	repo := storage.NewMemoryRepository()
	err := repo.CreateClient(context.Background(), &models.ApiClient{
		Name:        "sdk-test",
		ApiKey:      testKey,
		IsActive:    true,
		Permissions: []string{"*"},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
	if err := storage.SeedResources(context.Background(), repo); err != nil {
		t.Fatalf("failed to seed resources: %v", err)
	}

	loader := templates.NewLoader()
	manager := plans.NewManager(repo, loader)
	srv := api.NewServer(config.ServerConfig{}, manager, loader, repo, services.NewRegistry(), nil)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return NewClient(ts.URL, testKey)
}

func TestClientFullWorkflow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	assessment, err := c.CreateAssessment(ctx, models.CreateAssessmentRequest{
		TeamSize:          "2-5",
		BranchingStrategy: "none",
		BranchProtection:  models.ProtectionNone,
		SkillLevel:        "beginner",
	})
	if err != nil {
		t.Fatalf("CreateAssessment failed: %v", err)
	}
	if assessment.ID == 0 {
		t.Fatal("expected generated assessment ID")
	}

	fetched, err := c.GetAssessment(ctx, assessment.ID)
	if err != nil {
		t.Fatalf("GetAssessment failed: %v", err)
	}
	if fetched.TeamSize != "2-5" {
		t.Errorf("unexpected assessment: %+v", fetched)
	}

	plan, err := c.GeneratePlan(ctx, assessment.ID, models.WorkflowGitFlow)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if plan.Status != models.PlanPending || len(plan.Steps) == 0 {
		t.Fatalf("unexpected plan: %s, %d steps", plan.Status, len(plan.Steps))
	}

	toggled, err := c.ToggleStep(ctx, plan.ID, plan.Steps[0].ID)
	if err != nil {
		t.Fatalf("ToggleStep failed: %v", err)
	}
	if toggled.Status != models.PlanInProgress {
		t.Errorf("expected in-progress, got %s", toggled.Status)
	}

	title := "Renamed via SDK"
	updated, err := c.UpdatePlan(ctx, plan.ID, models.PlanMetadataUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdatePlan failed: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title not updated: %q", updated.Title)
	}

	list, err := c.ListPlans(ctx, ListPlanOptions{Status: "in-progress"})
	if err != nil {
		t.Fatalf("ListPlans failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 in-progress plan, got %d", len(list))
	}
}

func TestClientTemplatesAndResources(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	tmpls, err := c.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(tmpls) != 3 {
		t.Errorf("expected 3 templates, got %d", len(tmpls))
	}

	gitflow, err := c.GetTemplate(ctx, models.WorkflowGitFlow)
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if gitflow.Name != "GitFlow" {
		t.Errorf("unexpected template %q", gitflow.Name)
	}

	resources, err := c.ListResources(ctx, ResourceOptions{Category: "security"})
	if err != nil {
		t.Fatalf("ListResources failed: %v", err)
	}
	for _, res := range resources {
		if res.Category != "security" {
			t.Errorf("category filter leaked %q", res.Category)
		}
	}

	first, err := c.GetResource(ctx, 1)
	if err != nil {
		t.Fatalf("GetResource failed: %v", err)
	}
	if first.Title == "" {
		t.Error("expected seeded resource title")
	}
	if _, err := c.GetResource(ctx, 999); err == nil {
		t.Error("expected error for missing resource")
	}
}

func TestClientErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.GetPlan(ctx, 999); err == nil {
		t.Error("expected error for missing plan")
	}
	if _, err := c.GeneratePlan(ctx, 999, models.WorkflowGitFlow); err == nil {
		t.Error("expected error for missing assessment")
	}

	bad := NewClient(c.baseURL, "sk_invalid")
	if _, err := bad.ListPlans(ctx, ListPlanOptions{}); err == nil {
		t.Error("expected error with invalid api key")
	}
}
