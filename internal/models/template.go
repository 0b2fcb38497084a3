package models

// Workflow template types known to the generator
const (
	WorkflowGitFlow       = "gitflow"
	WorkflowTrunk         = "trunk"
	WorkflowFeatureBranch = "feature-branch"
)

// Branch describes one branch role in a workflow topology
type Branch struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Color       string `yaml:"color" json:"color"`
}

// WorkflowTemplate is a named branching-strategy blueprint.
// Type is the unique catalog key; templates are immutable after seeding.
type WorkflowTemplate struct {
	Name        string            `yaml:"name" json:"name"`
	Type        string            `yaml:"type" json:"type"`
	Description string            `yaml:"description" json:"description"`
	Complexity  string            `yaml:"complexity" json:"complexity"`
	Branches    map[string]Branch `yaml:"branches" json:"branches"`
	Rules       map[string]any    `yaml:"rules" json:"rules"`
	Advantages  []string          `yaml:"advantages" json:"advantages"`
	Recommended bool              `yaml:"recommended" json:"recommended"`
}
