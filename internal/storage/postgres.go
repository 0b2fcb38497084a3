package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Assessments ---

// CreateAssessment inserts a new assessment and sets its generated ID
func (r *PostgresRepository) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	reviewJSON, err := json.Marshal(a.CodeReviewProcess)
	if err != nil {
		return fmt.Errorf("failed to marshal code review process: %w", err)
	}

	settingsJSON, err := json.Marshal(a.RepositorySettings)
	if err != nil {
		return fmt.Errorf("failed to marshal repository settings: %w", err)
	}

	toolsJSON, err := json.Marshal(a.CollaborationTools)
	if err != nil {
		return fmt.Errorf("failed to marshal collaboration tools: %w", err)
	}

	query := `
		INSERT INTO assessments (team_size, branching_strategy, branch_protection, code_review_process, repository_settings, collaboration_tools, current_challenges, skill_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		a.TeamSize,
		a.BranchingStrategy,
		a.BranchProtection,
		reviewJSON,
		settingsJSON,
		toolsJSON,
		nullString(a.CurrentChallenges),
		a.SkillLevel,
		a.CreatedAt,
	).Scan(&a.ID)

	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}

	return nil
}

// GetAssessment retrieves an assessment by ID
func (r *PostgresRepository) GetAssessment(ctx context.Context, id int) (*models.Assessment, error) {
	query := `
		SELECT id, team_size, branching_strategy, branch_protection, code_review_process, repository_settings, collaboration_tools, current_challenges, skill_level, created_at
		FROM assessments
		WHERE id = $1
	`

	a, err := scanAssessment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	return a, nil
}

// ListAssessments returns all assessments, newest first
func (r *PostgresRepository) ListAssessments(ctx context.Context) ([]*models.Assessment, error) {
	query := `
		SELECT id, team_size, branching_strategy, branch_protection, code_review_process, repository_settings, collaboration_tools, current_challenges, skill_level, created_at
		FROM assessments
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}

	return assessments, nil
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*models.Assessment, error) {
	var a models.Assessment
	var challenges sql.NullString
	var reviewJSON, settingsJSON, toolsJSON []byte

	err := row.Scan(
		&a.ID,
		&a.TeamSize,
		&a.BranchingStrategy,
		&a.BranchProtection,
		&reviewJSON,
		&settingsJSON,
		&toolsJSON,
		&challenges,
		&a.SkillLevel,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.CurrentChallenges = challenges.String

	if err := json.Unmarshal(reviewJSON, &a.CodeReviewProcess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal code review process: %w", err)
	}
	if err := json.Unmarshal(settingsJSON, &a.RepositorySettings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal repository settings: %w", err)
	}
	if err := json.Unmarshal(toolsJSON, &a.CollaborationTools); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collaboration tools: %w", err)
	}

	return &a, nil
}

// --- Upgrade plans ---

// CreatePlan inserts a new upgrade plan and sets its generated ID
func (r *PostgresRepository) CreatePlan(ctx context.Context, p *models.UpgradePlan) error {
	stepsJSON, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	query := `
		INSERT INTO upgrade_plans (title, description, assessment_id, workflow_type, steps, status, progress, estimated_duration, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		p.Title,
		nullString(p.Description),
		nullInt(p.AssessmentID),
		p.WorkflowType,
		stepsJSON,
		string(p.Status),
		p.Progress,
		nullString(p.EstimatedDuration),
		p.Priority,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

// GetPlan retrieves an upgrade plan by ID
func (r *PostgresRepository) GetPlan(ctx context.Context, id int) (*models.UpgradePlan, error) {
	query := `
		SELECT id, title, description, assessment_id, workflow_type, steps, status, progress, estimated_duration, priority, created_at, updated_at
		FROM upgrade_plans
		WHERE id = $1
	`

	p, err := scanPlan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return p, nil
}

// UpdatePlan writes the full plan record back in one statement
func (r *PostgresRepository) UpdatePlan(ctx context.Context, p *models.UpgradePlan) error {
	stepsJSON, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	query := `
		UPDATE upgrade_plans
		SET title = $2, description = $3, steps = $4, status = $5, progress = $6, estimated_duration = $7, priority = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		nullString(p.Description),
		stepsJSON,
		string(p.Status),
		p.Progress,
		nullString(p.EstimatedDuration),
		p.Priority,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("plan not found: %d", p.ID)
	}

	return nil
}

// ListPlans returns upgrade plans matching filters, newest first
func (r *PostgresRepository) ListPlans(ctx context.Context, filters models.PlanListFilters) ([]*models.UpgradePlan, error) {
	query := `
		SELECT id, title, description, assessment_id, workflow_type, steps, status, progress, estimated_duration, priority, created_at, updated_at
		FROM upgrade_plans
		WHERE 1=1
	`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.UpgradePlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}

func scanPlan(row rowScanner) (*models.UpgradePlan, error) {
	var p models.UpgradePlan
	var statusStr string
	var description, duration sql.NullString
	var assessmentID sql.NullInt64
	var stepsJSON []byte

	err := row.Scan(
		&p.ID,
		&p.Title,
		&description,
		&assessmentID,
		&p.WorkflowType,
		&stepsJSON,
		&statusStr,
		&p.Progress,
		&duration,
		&p.Priority,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = models.PlanStatus(statusStr)
	p.Description = description.String
	p.EstimatedDuration = duration.String

	if assessmentID.Valid {
		id := int(assessmentID.Int64)
		p.AssessmentID = &id
	}

	if err := json.Unmarshal(stepsJSON, &p.Steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
	}

	return &p, nil
}

// --- Resources ---

// CreateResource inserts a new resource and sets its generated ID
func (r *PostgresRepository) CreateResource(ctx context.Context, res *models.Resource) error {
	tagsJSON, err := json.Marshal(res.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO resources (title, description, type, category, skill_level, url, rating, download_count, icon, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		res.Title,
		res.Description,
		res.Type,
		res.Category,
		res.SkillLevel,
		nullString(res.URL),
		res.Rating,
		res.DownloadCount,
		res.Icon,
		tagsJSON,
		res.CreatedAt,
	).Scan(&res.ID)

	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	return nil
}

// GetResource retrieves a resource by ID
func (r *PostgresRepository) GetResource(ctx context.Context, id int) (*models.Resource, error) {
	query := `
		SELECT id, title, description, type, category, skill_level, url, rating, download_count, icon, tags, created_at
		FROM resources
		WHERE id = $1
	`

	res, err := scanResource(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	return res, nil
}

// ListResources returns resources matching the optional category and
// skill level filters
func (r *PostgresRepository) ListResources(ctx context.Context, filters models.ResourceFilters) ([]*models.Resource, error) {
	query := `
		SELECT id, title, description, type, category, skill_level, url, rating, download_count, icon, tags, created_at
		FROM resources
		WHERE 1=1
	`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, filters.Category)
		argNum++
	}

	if filters.SkillLevel != "" {
		query += fmt.Sprintf(" AND skill_level = $%d", argNum)
		args = append(args, filters.SkillLevel)
	}

	query += " ORDER BY id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resources: %w", err)
	}

	return resources, nil
}

// CountResources returns the number of stored resources
func (r *PostgresRepository) CountResources(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM resources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

func scanResource(row rowScanner) (*models.Resource, error) {
	var res models.Resource
	var url sql.NullString
	var tagsJSON []byte

	err := row.Scan(
		&res.ID,
		&res.Title,
		&res.Description,
		&res.Type,
		&res.Category,
		&res.SkillLevel,
		&url,
		&res.Rating,
		&res.DownloadCount,
		&res.Icon,
		&tagsJSON,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.URL = url.String

	if err := json.Unmarshal(tagsJSON, &res.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}

	return &res, nil
}

// --- API clients ---

// CreateClient inserts a new API client and sets its generated ID
func (r *PostgresRepository) CreateClient(ctx context.Context, c *models.ApiClient) error {
	permissionsJSON, err := json.Marshal(c.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	metadataJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO api_clients (name, api_key, is_active, created_at, permissions, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		c.Name,
		c.ApiKey,
		c.IsActive,
		c.CreatedAt,
		permissionsJSON,
		metadataJSON,
	).Scan(&c.ID)

	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	return nil
}

// CountClients returns the number of registered API clients
func (r *PostgresRepository) CountClients(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_clients`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count api clients: %w", err)
	}
	return count, nil
}

// GetClientByApiKey retrieves an API client by its key
func (r *PostgresRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = $1
	`

	var client models.ApiClient
	var lastUsedAt sql.NullTime
	var permissionsJSON, metadataJSON []byte

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.ApiKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
		&metadataJSON,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if permissionsJSON != nil {
		if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &client.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &client, nil
}

// UpdateClientLastUsed updates the last_used_at timestamp for a client
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`

	_, err := r.pool.Exec(ctx, query, apiKey)
	if err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}

	return nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
