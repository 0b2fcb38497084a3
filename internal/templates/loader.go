package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

// Loader manages loading and caching of workflow templates. Templates
// are keyed by their type identifier (gitflow, trunk, feature-branch).
type Loader struct {
	mu        sync.RWMutex
	templates map[string]*models.WorkflowTemplate
}

// NewLoader creates a new template loader pre-populated with the
// built-in workflow catalog. Templates loaded from disk override the
// built-ins when they share a type.
func NewLoader() *Loader {
	l := &Loader{
		templates: make(map[string]*models.WorkflowTemplate),
	}
	for _, tmpl := range builtinTemplates() {
		l.templates[tmpl.Type] = tmpl
	}
	return l
}

// LoadFromDir loads all YAML templates from a directory
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading workflow templates from directory", "dir", dir)

	patterns := []string{"*.yaml", "*.yml"}
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load template", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("workflow templates loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single template from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var tmpl models.WorkflowTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if tmpl.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if tmpl.Type == "" {
		return fmt.Errorf("template type is required")
	}

	l.mu.Lock()
	l.templates[tmpl.Type] = &tmpl
	l.mu.Unlock()

	slog.Info("workflow template loaded", "name", tmpl.Name, "type", tmpl.Type)
	return nil
}

// GetByType retrieves a template by its type identifier, nil when unknown
func (l *Loader) GetByType(workflowType string) *models.WorkflowTemplate {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.templates[workflowType]
}

// List returns all loaded templates sorted by name
func (l *Loader) List() []*models.WorkflowTemplate {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.WorkflowTemplate, 0, len(l.templates))
	for _, tmpl := range l.templates {
		result = append(result, tmpl)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Add programmatically adds a template
func (l *Loader) Add(tmpl *models.WorkflowTemplate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[tmpl.Type] = tmpl
}

// builtinTemplates returns the default workflow catalog
func builtinTemplates() []*models.WorkflowTemplate {
	return []*models.WorkflowTemplate{
		{
			Name:        "GitFlow",
			Type:        models.WorkflowGitFlow,
			Description: "Best for release-based projects with multiple environments",
			Complexity:  "Medium",
			Branches: map[string]models.Branch{
				"main":    {Name: "main", Description: "Production-ready code", Color: "#24292F"},
				"develop": {Name: "develop", Description: "Integration branch", Color: "#0969DA"},
				"feature": {Name: "feature/*", Description: "Feature development", Color: "#1A7F37"},
				"release": {Name: "release/*", Description: "Release preparation", Color: "#FB8500"},
				"hotfix":  {Name: "hotfix/*", Description: "Production fixes", Color: "#D73A49"},
			},
			Rules: map[string]any{
				"mainProtection":    true,
				"developProtection": true,
				"requiredReviews":   2,
				"statusChecks":      true,
			},
			Advantages: []string{
				"Clear separation of concerns",
				"Parallel development support",
				"Release management",
				"Hotfix isolation",
			},
			Recommended: true,
		},
		{
			Name:        "Trunk-based Development",
			Type:        models.WorkflowTrunk,
			Description: "Ideal for continuous deployment and fast-moving teams",
			Complexity:  "Low",
			Branches: map[string]models.Branch{
				"main":    {Name: "main", Description: "Always deployable", Color: "#24292F"},
				"feature": {Name: "feature/*", Description: "Short-lived features", Color: "#1A7F37"},
			},
			Rules: map[string]any{
				"mainProtection":  true,
				"requiredReviews": 1,
				"statusChecks":    true,
				"fastForward":     true,
			},
			Advantages: []string{
				"Simplified branching",
				"Faster integration",
				"Reduced merge conflicts",
				"Continuous deployment ready",
			},
			Recommended: false,
		},
		{
			Name:        "Feature Branch Workflow",
			Type:        models.WorkflowFeatureBranch,
			Description: "Simple approach for small teams and straightforward projects",
			Complexity:  "Low",
			Branches: map[string]models.Branch{
				"main":    {Name: "main", Description: "Stable code", Color: "#24292F"},
				"feature": {Name: "feature/*", Description: "New features", Color: "#1A7F37"},
			},
			Rules: map[string]any{
				"mainProtection":  true,
				"requiredReviews": 1,
				"statusChecks":    false,
			},
			Advantages: []string{
				"Easy to understand",
				"Minimal overhead",
				"Good for small teams",
				"Quick setup",
			},
			Recommended: false,
		},
	}
}
