package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
	"github.com/canstralian/GitUpgradeNavigator/internal/planner"
	"github.com/canstralian/GitUpgradeNavigator/internal/storage"
	"github.com/canstralian/GitUpgradeNavigator/internal/templates"
)

// Common errors
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrTemplateNotFound   = errors.New("workflow template not found")
	ErrPlanNotFound       = errors.New("plan not found")
)

// Manager defines the interface for upgrade plan management
type Manager interface {
	Generate(ctx context.Context, assessmentID int, workflowType string) (*models.UpgradePlan, error)
	Get(ctx context.Context, id int) (*models.UpgradePlan, error)
	List(ctx context.Context, filters models.PlanListFilters) ([]*models.UpgradePlan, error)
	ToggleStep(ctx context.Context, planID, stepID int) (*models.UpgradePlan, error)
	UpdateMetadata(ctx context.Context, planID int, update models.PlanMetadataUpdate) (*models.UpgradePlan, error)
	Events() *Broker
	Ping(ctx context.Context) error
}

// PlanManager implements Manager on top of a storage repository and the
// workflow template catalog
type PlanManager struct {
	repo           storage.Repository
	templateLoader *templates.Loader
	broker         *Broker
}

// NewManager creates a new PlanManager
func NewManager(repo storage.Repository, loader *templates.Loader) *PlanManager {
	return &PlanManager{
		repo:           repo,
		templateLoader: loader,
		broker:         NewBroker(),
	}
}

// Events returns the progress event broker for this manager
func (m *PlanManager) Events() *Broker {
	return m.broker
}

// Ping checks if the manager is operational
func (m *PlanManager) Ping(ctx context.Context) error {
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Generate builds a new upgrade plan from a stored assessment and a
// workflow template, persists it, and returns the stored plan
func (m *PlanManager) Generate(ctx context.Context, assessmentID int, workflowType string) (*models.UpgradePlan, error) {
	assessment, err := m.repo.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	if assessment == nil {
		return nil, ErrAssessmentNotFound
	}

	tmpl := m.templateLoader.GetByType(workflowType)
	if tmpl == nil {
		return nil, ErrTemplateNotFound
	}

	steps := planner.Generate(assessment, tmpl)
	now := time.Now().UTC()

	plan := &models.UpgradePlan{
		Title:             fmt.Sprintf("%s Implementation Plan", tmpl.Name),
		Description:       fmt.Sprintf("Upgrade plan for implementing %s workflow", tmpl.Name),
		AssessmentID:      &assessmentID,
		WorkflowType:      tmpl.Type,
		Steps:             steps,
		Status:            models.PlanPending,
		Progress:          0,
		EstimatedDuration: planner.EstimateDuration(steps),
		Priority:          models.PriorityMedium,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := m.repo.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to store plan: %w", err)
	}

	slog.Info("upgrade plan generated",
		"plan_id", plan.ID,
		"assessment_id", assessmentID,
		"workflow_type", tmpl.Type,
		"steps", len(steps))

	return plan, nil
}

// Get retrieves a plan by ID
func (m *PlanManager) Get(ctx context.Context, id int) (*models.UpgradePlan, error) {
	plan, err := m.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// List returns plans matching the given filters, newest first
func (m *PlanManager) List(ctx context.Context, filters models.PlanListFilters) ([]*models.UpgradePlan, error) {
	plans, err := m.repo.ListPlans(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// ToggleStep flips the completion flag of one step and recomputes the
// plan's progress and status. The plan is re-read from storage so the
// toggle always applies to the latest persisted state. A step ID that
// does not exist in the plan leaves the plan untouched, including its
// updated_at timestamp.
func (m *PlanManager) ToggleStep(ctx context.Context, planID, stepID int) (*models.UpgradePlan, error) {
	plan, err := m.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	toggled := false
	for i := range plan.Steps {
		if plan.Steps[i].ID == stepID {
			plan.Steps[i].Completed = !plan.Steps[i].Completed
			toggled = true
			break
		}
	}
	if !toggled {
		slog.Debug("toggle ignored, step not in plan", "plan_id", planID, "step_id", stepID)
		return plan, nil
	}

	plan.Progress = models.ComputeProgress(plan.Steps)
	plan.Status = models.DeriveStatus(plan.Progress)
	plan.UpdatedAt = time.Now().UTC()

	if err := m.repo.UpdatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to store plan: %w", err)
	}

	var completed bool
	for _, s := range plan.Steps {
		if s.ID == stepID {
			completed = s.Completed
			break
		}
	}
	m.broker.Publish(models.ProgressEvent{
		PlanID:    plan.ID,
		StepID:    stepID,
		Completed: completed,
		Progress:  plan.Progress,
		Status:    plan.Status,
	})

	return plan, nil
}

// UpdateMetadata applies a partial update to a plan's caller-mutable
// fields. Steps, progress, and status cannot be changed here.
func (m *PlanManager) UpdateMetadata(ctx context.Context, planID int, update models.PlanMetadataUpdate) (*models.UpgradePlan, error) {
	plan, err := m.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	changed := false
	if update.Title != nil {
		plan.Title = *update.Title
		changed = true
	}
	if update.Description != nil {
		plan.Description = *update.Description
		changed = true
	}
	if update.Priority != nil {
		plan.Priority = *update.Priority
		changed = true
	}
	if !changed {
		return plan, nil
	}

	plan.UpdatedAt = time.Now().UTC()
	if err := m.repo.UpdatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to store plan: %w", err)
	}

	return plan, nil
}
