package models

import (
	"math"
	"time"
)

// PlanStatus represents the derived state of an upgrade plan
type PlanStatus string

const (
	PlanPending    PlanStatus = "pending"
	PlanInProgress PlanStatus = "in-progress"
	PlanCompleted  PlanStatus = "completed"
)

// Step priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Step categories
const (
	CategorySecurity      = "security"
	CategoryWorkflow      = "workflow"
	CategoryCollaboration = "collaboration"
	CategoryAutomation    = "automation"
	CategoryDocumentation = "documentation"
	CategoryTraining      = "training"
	CategoryMonitoring    = "monitoring"
	CategoryOptimization  = "optimization"
)

// Step is a single actionable checklist item within an upgrade plan.
// IDs are sequential integers unique within one plan.
type Step struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Completed     bool     `json:"completed"`
	EstimatedTime string   `json:"estimatedTime"`
	Priority      string   `json:"priority"`
	Phase         string   `json:"phase"`
	Instructions  []string `json:"instructions,omitempty"`
}

// UpgradePlan is a generated, progress-tracked remediation checklist
type UpgradePlan struct {
	ID                int        `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	AssessmentID      *int       `json:"assessmentId,omitempty"`
	WorkflowType      string     `json:"workflowType"`
	Steps             []Step     `json:"steps"`
	Status            PlanStatus `json:"status"`
	Progress          int        `json:"progress"`
	EstimatedDuration string     `json:"estimatedDuration,omitempty"`
	Priority          string     `json:"priority"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// CompletedSteps returns the number of completed steps
func (p *UpgradePlan) CompletedSteps() int {
	count := 0
	for _, s := range p.Steps {
		if s.Completed {
			count++
		}
	}
	return count
}

// ComputeProgress returns the whole-percent completion for the given
// step sequence, 0 when the sequence is empty. Half rounds up.
func ComputeProgress(steps []Step) int {
	if len(steps) == 0 {
		return 0
	}
	completed := 0
	for _, s := range steps {
		if s.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(steps))))
}

// DeriveStatus maps a progress percentage onto the plan status ladder
func DeriveStatus(progress int) PlanStatus {
	switch {
	case progress >= 100:
		return PlanCompleted
	case progress > 0:
		return PlanInProgress
	default:
		return PlanPending
	}
}

// PlanListFilters defines filters for listing upgrade plans
type PlanListFilters struct {
	Status PlanStatus
	Limit  int
	Offset int
}

// GeneratePlanRequest asks for a plan from an assessment and a workflow type
type GeneratePlanRequest struct {
	AssessmentID int    `json:"assessment_id"`
	WorkflowType string `json:"workflow_type"`
}

// PlanMetadataUpdate carries the narrow set of caller-mutable plan fields.
// Derived fields (steps, progress, status) are deliberately absent: they
// change only through the step-toggle path.
type PlanMetadataUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// ProgressEvent is published whenever a plan's progress changes
type ProgressEvent struct {
	PlanID    int        `json:"plan_id"`
	StepID    int        `json:"step_id"`
	Completed bool       `json:"completed"`
	Progress  int        `json:"progress"`
	Status    PlanStatus `json:"status"`
}
