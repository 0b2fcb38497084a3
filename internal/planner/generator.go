// Package planner derives upgrade plan checklists from an assessment and
// a workflow template. Everything in this package is pure computation:
// same inputs, same steps.
package planner

import "github.com/canstralian/GitUpgradeNavigator/internal/models"

// Generate derives the full remediation checklist for one assessment and
// the selected workflow template. Steps come out grouped by phase in the
// fixed PhaseOrder, with sequential IDs assigned after assembly.
//
// An unrecognized template type is not an error; the Workflow Setup phase
// is simply empty for it. The result is never empty because the mandatory
// best-practice steps are emitted regardless of assessment content.
func Generate(a *models.Assessment, t *models.WorkflowTemplate) []models.Step {
	byPhase := make(map[string][]models.Step, len(PhaseOrder))
	emit := func(d stepDef) {
		byPhase[d.phase] = append(byPhase[d.phase], d.toStep())
	}

	// Configuration Setup: the audit is always the first step of any plan.
	emit(stepAuditSettings)
	if needsBranchProtection(a) {
		emit(stepBranchProtection)
	}
	emit(stepSecuritySettings)

	// Workflow Setup: only template-specific steps live here.
	switch t.Type {
	case models.WorkflowGitFlow:
		emit(stepGitFlowStructure)
		emit(stepGitFlowRelease)
	case models.WorkflowTrunk:
		emit(stepTrunkBased)
	}

	// Code Review Setup
	if !a.CodeReviewProcess.RequiredReviews {
		emit(stepCodeReview)
	}
	emit(stepCommitFormat)

	// Automation Setup
	if !a.CodeReviewProcess.AutomatedChecks {
		emit(stepCIPipeline)
	}
	emit(stepQualityGates)

	// Documentation & Training
	emit(stepDocumentation)
	emit(stepTeamTraining)

	// Monitoring & Optimization
	emit(stepMonitoring)
	emit(stepReviewProcess)

	steps := make([]models.Step, 0, 16)
	for _, phase := range PhaseOrder {
		steps = append(steps, byPhase[phase]...)
	}

	// IDs are assigned once the final order is known, so they are both
	// unique within the plan and stable across invocations.
	for i := range steps {
		steps[i].ID = i + 1
	}

	return steps
}

// needsBranchProtection reports whether the assessment indicates missing
// branch protection, either via the categorical level or the settings flag.
func needsBranchProtection(a *models.Assessment) bool {
	return a.BranchProtection == models.ProtectionNone || !a.RepositorySettings.BranchProtection
}
