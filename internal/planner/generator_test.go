package planner

import (
	"reflect"
	"testing"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

func weakAssessment() *models.Assessment {
	// Nothing in place: every conditional step should fire
	return &models.Assessment{
		TeamSize:          "2-5",
		BranchingStrategy: "none",
		BranchProtection:  models.ProtectionNone,
		SkillLevel:        "beginner",
	}
}

func strongAssessment() *models.Assessment {
	return &models.Assessment{
		TeamSize:          "6-15",
		BranchingStrategy: "feature-branch",
		BranchProtection:  models.ProtectionComprehensive,
		CodeReviewProcess: models.CodeReviewProcess{
			RequiredReviews:  true,
			AutomatedChecks:  true,
			CodeQualityGates: true,
		},
		RepositorySettings: models.RepositorySettings{
			BranchProtection:  true,
			MergeRestrictions: true,
			StatusChecks:      true,
		},
		SkillLevel: "advanced",
	}
}

func gitflowTemplate() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{Name: "GitFlow", Type: models.WorkflowGitFlow}
}

func stepTitles(steps []models.Step) []string {
	titles := make([]string, len(steps))
	for i, s := range steps {
		titles[i] = s.Title
	}
	return titles
}

func hasStep(steps []models.Step, title string) bool {
	for _, s := range steps {
		if s.Title == title {
			return true
		}
	}
	return false
}

func TestGenerateDeterministic(t *testing.T) {
	a := weakAssessment()
	tmpl := gitflowTemplate()

	first := Generate(a, tmpl)
	second := Generate(a, tmpl)

	if !reflect.DeepEqual(first, second) {
		t.Error("two generations from the same inputs differ")
	}
}

func TestGenerateMandatorySteps(t *testing.T) {
	// Even a fully up-to-date team gets the best-practice baseline
	steps := Generate(strongAssessment(), &models.WorkflowTemplate{Name: "Custom", Type: "kanban"})

	mandatory := []string{
		"Audit Current Repository Settings",
		"Configure Repository Security Settings",
		"Standardize Commit Message Format",
		"Configure Quality Gates",
		"Create Comprehensive Documentation",
		"Conduct Team Training Sessions",
		"Set Up Project Monitoring",
		"Establish Review and Improvement Process",
	}
	if len(steps) != len(mandatory) {
		t.Fatalf("expected %d steps, got %d: %v", len(mandatory), len(steps), stepTitles(steps))
	}
	for _, title := range mandatory {
		if !hasStep(steps, title) {
			t.Errorf("mandatory step %q missing", title)
		}
	}
}

func TestGenerateConditionalSteps(t *testing.T) {
	steps := Generate(weakAssessment(), gitflowTemplate())

	conditional := []string{
		"Enable Branch Protection Rules",
		"Implement Code Review Process",
		"Set Up Continuous Integration Pipeline",
	}
	for _, title := range conditional {
		if !hasStep(steps, title) {
			t.Errorf("expected conditional step %q for weak assessment", title)
		}
	}

	steps = Generate(strongAssessment(), gitflowTemplate())
	for _, title := range conditional {
		if hasStep(steps, title) {
			t.Errorf("step %q should not appear for strong assessment", title)
		}
	}
}

func TestGenerateBranchProtectionTriggers(t *testing.T) {
	// Either the categorical level or the settings flag alone triggers it
	a := strongAssessment()
	a.BranchProtection = models.ProtectionNone
	if !hasStep(Generate(a, gitflowTemplate()), "Enable Branch Protection Rules") {
		t.Error("categorical level none should trigger branch protection step")
	}

	a = strongAssessment()
	a.RepositorySettings.BranchProtection = false
	if !hasStep(Generate(a, gitflowTemplate()), "Enable Branch Protection Rules") {
		t.Error("missing settings flag should trigger branch protection step")
	}
}

func TestGenerateWorkflowSteps(t *testing.T) {
	cases := []struct {
		workflowType string
		want         []string
		absent       []string
	}{
		{
			workflowType: models.WorkflowGitFlow,
			want:         []string{"Set Up GitFlow Branch Structure", "Configure GitFlow Release Process"},
			absent:       []string{"Configure Trunk-Based Development"},
		},
		{
			workflowType: models.WorkflowTrunk,
			want:         []string{"Configure Trunk-Based Development"},
			absent:       []string{"Set Up GitFlow Branch Structure", "Configure GitFlow Release Process"},
		},
		{
			workflowType: models.WorkflowFeatureBranch,
			want:         nil,
			absent: []string{
				"Set Up GitFlow Branch Structure",
				"Configure GitFlow Release Process",
				"Configure Trunk-Based Development",
			},
		},
	}

	for _, tc := range cases {
		steps := Generate(weakAssessment(), &models.WorkflowTemplate{Name: tc.workflowType, Type: tc.workflowType})
		for _, title := range tc.want {
			if !hasStep(steps, title) {
				t.Errorf("%s: expected step %q", tc.workflowType, title)
			}
		}
		for _, title := range tc.absent {
			if hasStep(steps, title) {
				t.Errorf("%s: unexpected step %q", tc.workflowType, title)
			}
		}
	}
}

func TestGeneratePhaseOrderAndIDs(t *testing.T) {
	steps := Generate(weakAssessment(), gitflowTemplate())

	phaseRank := make(map[string]int, len(PhaseOrder))
	for i, phase := range PhaseOrder {
		phaseRank[phase] = i
	}

	lastRank := -1
	for i, s := range steps {
		if s.ID != i+1 {
			t.Errorf("step %d: expected ID %d, got %d", i, i+1, s.ID)
		}
		rank, ok := phaseRank[s.Phase]
		if !ok {
			t.Fatalf("step %q has unknown phase %q", s.Title, s.Phase)
		}
		if rank < lastRank {
			t.Errorf("step %q out of phase order", s.Title)
		}
		lastRank = rank
		if s.Completed {
			t.Errorf("step %q generated as completed", s.Title)
		}
	}
}

func TestGenerateFirstStepIsAudit(t *testing.T) {
	steps := Generate(weakAssessment(), gitflowTemplate())
	if len(steps) == 0 || steps[0].Title != "Audit Current Repository Settings" {
		t.Fatalf("expected audit step first, got %v", stepTitles(steps))
	}
}

func TestGenerateFullScenario(t *testing.T) {
	// Small team with no protections choosing gitflow: all three
	// conditionals plus two workflow steps on top of the eight mandatory
	steps := Generate(weakAssessment(), gitflowTemplate())
	if len(steps) != 13 {
		t.Fatalf("expected 13 steps, got %d: %v", len(steps), stepTitles(steps))
	}

	if got := EstimateDuration(steps); got != "15 hours" {
		t.Errorf("expected total duration 15 hours, got %q", got)
	}
}
