package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

// defaultResources is the library shipped with a fresh installation
var defaultResources = []models.Resource{
	{
		Title:         "Git Best Practices Guide",
		Description:   "Comprehensive guide covering commit messages, branching strategies, and collaboration workflows.",
		Type:          "tutorial",
		Category:      "workflows",
		SkillLevel:    "beginner",
		URL:           "https://git-scm.com/book",
		Rating:        5,
		DownloadCount: 124,
		Icon:          "fas fa-book",
		Tags:          []string{"git", "best-practices", "workflow"},
	},
	{
		Title:         "GitHub Actions Workflow",
		Description:   "Pre-configured CI/CD workflows for testing, building, and deploying your applications.",
		Type:          "tool",
		Category:      "automation",
		SkillLevel:    "intermediate",
		URL:           "https://github.com/actions",
		Rating:        4,
		DownloadCount: 2300,
		Icon:          "fas fa-cogs",
		Tags:          []string{"github-actions", "ci-cd", "automation"},
	},
	{
		Title:         "Security Scanning Setup",
		Description:   "Step-by-step guide to implementing code scanning, secret detection, and vulnerability management.",
		Type:          "best-practice",
		Category:      "security",
		SkillLevel:    "advanced",
		URL:           "https://docs.github.com/en/code-security",
		Rating:        5,
		DownloadCount: 856,
		Icon:          "fas fa-shield-alt",
		Tags:          []string{"security", "scanning", "vulnerabilities"},
	},
	{
		Title:         "Team Training Materials",
		Description:   "Presentation slides and exercises for training your team on Git workflows and GitHub features.",
		Type:          "training",
		Category:      "workflows",
		SkillLevel:    "beginner",
		URL:           "/downloads/training-materials.zip",
		Rating:        4,
		DownloadCount: 445,
		Icon:          "fas fa-users",
		Tags:          []string{"training", "team", "presentations"},
	},
	{
		Title:         "Pre-commit Hooks",
		Description:   "Collection of pre-commit hooks for code formatting, linting, and quality checks.",
		Type:          "tool",
		Category:      "automation",
		SkillLevel:    "intermediate",
		URL:           "https://pre-commit.com/",
		Rating:        4,
		DownloadCount: 1200,
		Icon:          "fas fa-code",
		Tags:          []string{"pre-commit", "hooks", "quality"},
	},
	{
		Title:         "Metrics Dashboard",
		Description:   "Track your team's Git performance with detailed analytics and improvement suggestions.",
		Type:          "tool",
		Category:      "analytics",
		SkillLevel:    "advanced",
		URL:           "/tools/metrics-dashboard",
		Rating:        5,
		DownloadCount: 780,
		Icon:          "fas fa-chart-line",
		Tags:          []string{"metrics", "analytics", "performance"},
	},
}

// SeedResources inserts the default resource library when the resources
// table is empty. Safe to call on every startup.
func SeedResources(ctx context.Context, repo Repository) error {
	count, err := repo.CountResources(ctx)
	if err != nil {
		return fmt.Errorf("failed to check resources: %w", err)
	}
	if count > 0 {
		slog.Debug("resources already seeded", "count", count)
		return nil
	}

	for i := range defaultResources {
		res := defaultResources[i]
		res.CreatedAt = time.Now().UTC()
		if err := repo.CreateResource(ctx, &res); err != nil {
			return fmt.Errorf("failed to seed resource %q: %w", res.Title, err)
		}
	}

	slog.Info("default resources seeded", "count", len(defaultResources))
	return nil
}

// SeedBootstrapClient creates an admin API client with full permissions
// when no clients exist yet. The generated key is logged once at startup
// and never stored in plaintext anywhere else.
func SeedBootstrapClient(ctx context.Context, repo Repository) error {
	count, err := repo.CountClients(ctx)
	if err != nil {
		return fmt.Errorf("failed to check api clients: %w", err)
	}
	if count > 0 {
		return nil
	}

	key := "sk_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	client := &models.ApiClient{
		Name:        "bootstrap-admin",
		ApiKey:      key,
		Permissions: []string{"*"},
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.CreateClient(ctx, client); err != nil {
		return fmt.Errorf("failed to create bootstrap client: %w", err)
	}

	slog.Warn("bootstrap api client created, store this key securely", "api_key", key)
	return nil
}
