package planner

import "github.com/canstralian/GitUpgradeNavigator/internal/models"

// Implementation phases in rollout order. Steps are grouped under these
// labels and the generator emits phases in exactly this order.
const (
	PhaseConfiguration = "Configuration Setup"
	PhaseWorkflow      = "Workflow Setup"
	PhaseCodeReview    = "Code Review Setup"
	PhaseAutomation    = "Automation Setup"
	PhaseDocumentation = "Documentation & Training"
	PhaseMonitoring    = "Monitoring & Optimization"
)

// PhaseOrder is the fixed ordering of phases within a generated plan
var PhaseOrder = []string{
	PhaseConfiguration,
	PhaseWorkflow,
	PhaseCodeReview,
	PhaseAutomation,
	PhaseDocumentation,
	PhaseMonitoring,
}

// stepDef is a static step definition. Everything except the per-plan ID
// and the Completed flag is fixed per step kind.
type stepDef struct {
	title         string
	description   string
	category      string
	estimatedTime string
	priority      string
	phase         string
	instructions  []string
}

func (d stepDef) toStep() models.Step {
	return models.Step{
		Title:         d.title,
		Description:   d.description,
		Category:      d.category,
		EstimatedTime: d.estimatedTime,
		Priority:      d.priority,
		Phase:         d.phase,
		Instructions:  d.instructions,
	}
}

// Configuration Setup

var stepAuditSettings = stepDef{
	title:         "Audit Current Repository Settings",
	description:   "Review the repository's existing configuration and record the current state before making changes",
	category:      models.CategorySecurity,
	estimatedTime: "20 minutes",
	priority:      models.PriorityHigh,
	phase:         PhaseConfiguration,
	instructions: []string{
		"List all repositories in scope and their default branches",
		"Record current protection rules, merge settings and access levels",
		"Note any settings that differ between repositories",
	},
}

var stepBranchProtection = stepDef{
	title:         "Enable Branch Protection Rules",
	description:   "Configure branch protection for main branches",
	category:      models.CategorySecurity,
	estimatedTime: "30 minutes",
	priority:      models.PriorityHigh,
	phase:         PhaseConfiguration,
	instructions: []string{
		"Protect the default branch against direct pushes",
		"Require pull requests before merging",
		"Restrict force pushes and branch deletion",
	},
}

var stepSecuritySettings = stepDef{
	title:         "Configure Repository Security Settings",
	description:   "Apply a security baseline: secret scanning, dependency alerts and signed commits where supported",
	category:      models.CategorySecurity,
	estimatedTime: "45 minutes",
	priority:      models.PriorityHigh,
	phase:         PhaseConfiguration,
	instructions: []string{
		"Enable secret scanning and push protection",
		"Enable dependency vulnerability alerts",
		"Decide on a commit signing policy and document it",
	},
}

// Workflow Setup (template-specific)

var stepGitFlowStructure = stepDef{
	title:         "Set Up GitFlow Branch Structure",
	description:   "Create the develop integration branch and establish naming patterns for feature, release and hotfix branches",
	category:      models.CategoryWorkflow,
	estimatedTime: "45 minutes",
	priority:      models.PriorityHigh,
	phase:         PhaseWorkflow,
	instructions: []string{
		"Create a develop branch from main and protect it",
		"Agree on feature/*, release/* and hotfix/* naming patterns",
		"Document which branch each kind of change starts from",
	},
}

var stepGitFlowRelease = stepDef{
	title:         "Configure GitFlow Release Process",
	description:   "Define how release branches are cut, stabilized, tagged and merged back",
	category:      models.CategoryWorkflow,
	estimatedTime: "1 hour",
	priority:      models.PriorityMedium,
	phase:         PhaseWorkflow,
	instructions: []string{
		"Define the criteria for cutting a release branch",
		"Establish the tagging convention for releases",
		"Document the merge-back flow into main and develop",
	},
}

var stepTrunkBased = stepDef{
	title:         "Configure Trunk-Based Development",
	description:   "Set main up as the always-deployable trunk with short-lived feature branches",
	category:      models.CategoryWorkflow,
	estimatedTime: "1 hour",
	priority:      models.PriorityHigh,
	phase:         PhaseWorkflow,
	instructions: []string{
		"Agree on a maximum feature branch lifetime",
		"Enable fast-forward merges into main",
		"Introduce feature flags for incomplete work",
	},
}

// Code Review Setup

var stepCodeReview = stepDef{
	title:         "Implement Code Review Process",
	description:   "Set up required pull request reviews and approval workflows",
	category:      models.CategoryCollaboration,
	estimatedTime: "45 minutes",
	priority:      models.PriorityHigh,
	phase:         PhaseCodeReview,
	instructions: []string{
		"Require at least one approving review before merge",
		"Define code ownership for review routing",
		"Agree on review turnaround expectations",
	},
}

var stepCommitFormat = stepDef{
	title:         "Standardize Commit Message Format",
	description:   "Adopt a shared commit message convention so history stays searchable and releasable",
	category:      models.CategoryCollaboration,
	estimatedTime: "30 minutes",
	priority:      models.PriorityMedium,
	phase:         PhaseCodeReview,
	instructions: []string{
		"Pick a convention and document it with examples",
		"Add a commit message template to the repository",
		"Optionally enforce the format with a commit hook",
	},
}

// Automation Setup

var stepCIPipeline = stepDef{
	title:         "Set Up Continuous Integration Pipeline",
	description:   "Configure continuous integration with automated test runs on every pull request",
	category:      models.CategoryAutomation,
	estimatedTime: "2 hours",
	priority:      models.PriorityMedium,
	phase:         PhaseAutomation,
	instructions: []string{
		"Add a pipeline that builds and tests every pull request",
		"Make the pipeline a required status check",
		"Surface test results in the pull request view",
	},
}

var stepQualityGates = stepDef{
	title:         "Configure Quality Gates",
	description:   "Add linting, formatting and coverage thresholds as merge requirements",
	category:      models.CategoryAutomation,
	estimatedTime: "1 hour",
	priority:      models.PriorityMedium,
	phase:         PhaseAutomation,
	instructions: []string{
		"Add linting and formatting checks to the pipeline",
		"Set an initial coverage threshold the team can hold",
		"Fail the pipeline when a gate is not met",
	},
}

// Documentation & Training

var stepDocumentation = stepDef{
	title:         "Create Comprehensive Documentation",
	description:   "Write the workflow guide: branching rules, review expectations and release steps in one place",
	category:      models.CategoryDocumentation,
	estimatedTime: "2 hours",
	priority:      models.PriorityMedium,
	phase:         PhaseDocumentation,
	instructions: []string{
		"Document the branching model with a diagram",
		"Describe the pull request lifecycle end to end",
		"Link the guide from the repository README",
	},
}

var stepTeamTraining = stepDef{
	title:         "Conduct Team Training Sessions",
	description:   "Train team members on new workflow and best practices",
	category:      models.CategoryTraining,
	estimatedTime: "3 hours",
	priority:      models.PriorityMedium,
	phase:         PhaseDocumentation,
	instructions: []string{
		"Walk the team through the documented workflow",
		"Run a hands-on exercise covering branch, review and merge",
		"Collect questions and fold answers back into the guide",
	},
}

// Monitoring & Optimization

var stepMonitoring = stepDef{
	title:         "Set Up Project Monitoring",
	description:   "Track workflow health: open pull request age, review latency and pipeline stability",
	category:      models.CategoryMonitoring,
	estimatedTime: "1 hour",
	priority:      models.PriorityLow,
	phase:         PhaseMonitoring,
	instructions: []string{
		"Pick the two or three workflow metrics that matter most",
		"Set up a dashboard or recurring report for them",
		"Agree on thresholds that should trigger a discussion",
	},
}

var stepReviewProcess = stepDef{
	title:         "Establish Review and Improvement Process",
	description:   "Schedule a recurring retrospective of the workflow itself so the process keeps improving",
	category:      models.CategoryOptimization,
	estimatedTime: "45 minutes",
	priority:      models.PriorityLow,
	phase:         PhaseMonitoring,
	instructions: []string{
		"Schedule a monthly workflow retrospective",
		"Review the monitored metrics in each session",
		"Record agreed changes and update the documentation",
	},
}
