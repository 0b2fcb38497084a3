package storage

import (
	"context"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

// Repository defines the interface for record persistence. Lookups return
// (nil, nil) when the record does not exist; callers map that to their own
// not-found errors.
type Repository interface {
	// Assessments
	CreateAssessment(ctx context.Context, a *models.Assessment) error
	GetAssessment(ctx context.Context, id int) (*models.Assessment, error)
	ListAssessments(ctx context.Context) ([]*models.Assessment, error)

	// Upgrade plans
	CreatePlan(ctx context.Context, p *models.UpgradePlan) error
	GetPlan(ctx context.Context, id int) (*models.UpgradePlan, error)
	UpdatePlan(ctx context.Context, p *models.UpgradePlan) error
	ListPlans(ctx context.Context, filters models.PlanListFilters) ([]*models.UpgradePlan, error)

	// Resources
	CreateResource(ctx context.Context, r *models.Resource) error
	GetResource(ctx context.Context, id int) (*models.Resource, error)
	ListResources(ctx context.Context, filters models.ResourceFilters) ([]*models.Resource, error)
	CountResources(ctx context.Context) (int, error)

	// API clients
	CreateClient(ctx context.Context, c *models.ApiClient) error
	CountClients(ctx context.Context) (int, error)
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
