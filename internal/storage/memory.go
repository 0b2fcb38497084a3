package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

// MemoryRepository implements Repository with in-process maps. It backs
// tests and local development; production runs on PostgreSQL. Identifiers
// auto-increment per table, matching the database behavior.
type MemoryRepository struct {
	mu sync.RWMutex

	assessments map[int]*models.Assessment
	plans       map[int]*models.UpgradePlan
	resources   map[int]*models.Resource
	clients     map[int]*models.ApiClient

	assessmentID int
	planID       int
	resourceID   int
	clientID     int
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		assessments: make(map[int]*models.Assessment),
		plans:       make(map[int]*models.UpgradePlan),
		resources:   make(map[int]*models.Resource),
		clients:     make(map[int]*models.ApiClient),
	}
}

// Ping always succeeds for the in-memory backend
func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

// Close is a no-op for the in-memory backend
func (r *MemoryRepository) Close() error { return nil }

// --- Assessments ---

func (r *MemoryRepository) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assessmentID++
	a.ID = r.assessmentID
	stored := *a
	r.assessments[a.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetAssessment(ctx context.Context, id int) (*models.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assessments[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *MemoryRepository) ListAssessments(ctx context.Context) ([]*models.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Assessment, 0, len(r.assessments))
	for i := 1; i <= r.assessmentID; i++ {
		if a, ok := r.assessments[i]; ok {
			copied := *a
			result = append(result, &copied)
		}
	}
	return result, nil
}

// --- Upgrade plans ---

func (r *MemoryRepository) CreatePlan(ctx context.Context, p *models.UpgradePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.planID++
	p.ID = r.planID
	r.plans[p.ID] = copyPlan(p)
	return nil
}

func (r *MemoryRepository) GetPlan(ctx context.Context, id int) (*models.UpgradePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	return copyPlan(p), nil
}

func (r *MemoryRepository) UpdatePlan(ctx context.Context, p *models.UpgradePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[p.ID]; !ok {
		return fmt.Errorf("plan not found: %d", p.ID)
	}
	r.plans[p.ID] = copyPlan(p)
	return nil
}

func (r *MemoryRepository) ListPlans(ctx context.Context, filters models.PlanListFilters) ([]*models.UpgradePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.UpgradePlan
	// Newest first, matching the database ordering
	for i := r.planID; i >= 1; i-- {
		p, ok := r.plans[i]
		if !ok {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		result = append(result, copyPlan(p))
	}

	if filters.Offset > 0 {
		if filters.Offset >= len(result) {
			return nil, nil
		}
		result = result[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(result) {
		result = result[:filters.Limit]
	}
	return result, nil
}

// --- Resources ---

func (r *MemoryRepository) CreateResource(ctx context.Context, res *models.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resourceID++
	res.ID = r.resourceID
	stored := *res
	stored.Tags = append([]string(nil), res.Tags...)
	r.resources[res.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetResource(ctx context.Context, id int) (*models.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[id]
	if !ok {
		return nil, nil
	}
	copied := *res
	copied.Tags = append([]string(nil), res.Tags...)
	return &copied, nil
}

func (r *MemoryRepository) ListResources(ctx context.Context, filters models.ResourceFilters) ([]*models.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Resource
	for i := 1; i <= r.resourceID; i++ {
		res, ok := r.resources[i]
		if !ok {
			continue
		}
		if filters.Category != "" && res.Category != filters.Category {
			continue
		}
		if filters.SkillLevel != "" && res.SkillLevel != filters.SkillLevel {
			continue
		}
		copied := *res
		copied.Tags = append([]string(nil), res.Tags...)
		result = append(result, &copied)
	}
	return result, nil
}

func (r *MemoryRepository) CountResources(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources), nil
}

// --- API clients ---

func (r *MemoryRepository) CreateClient(ctx context.Context, c *models.ApiClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clientID++
	c.ID = r.clientID
	stored := *c
	stored.Permissions = append([]string(nil), c.Permissions...)
	r.clients[c.ID] = &stored
	return nil
}

func (r *MemoryRepository) CountClients(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients), nil
}

func (r *MemoryRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.clients {
		if c.ApiKey == apiKey {
			copied := *c
			copied.Permissions = append([]string(nil), c.Permissions...)
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.clients {
		if c.ApiKey == apiKey {
			now := time.Now()
			c.LastUsedAt = &now
			return nil
		}
	}
	return nil
}

// copyPlan deep-copies a plan so callers cannot mutate stored state
func copyPlan(p *models.UpgradePlan) *models.UpgradePlan {
	copied := *p
	copied.Steps = make([]models.Step, len(p.Steps))
	copy(copied.Steps, p.Steps)
	for i := range copied.Steps {
		copied.Steps[i].Instructions = append([]string(nil), p.Steps[i].Instructions...)
	}
	if p.AssessmentID != nil {
		id := *p.AssessmentID
		copied.AssessmentID = &id
	}
	return &copied
}
