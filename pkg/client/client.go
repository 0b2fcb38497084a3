package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

// Client is a Go SDK for the upgrade-navigator API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new upgrade-navigator client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListPlanOptions contains options for listing upgrade plans
type ListPlanOptions struct {
	Status string
	Limit  int
	Offset int
}

// ResourceOptions contains filters for listing resources
type ResourceOptions struct {
	Category   string
	SkillLevel string
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateAssessment records a new team assessment
func (c *Client) CreateAssessment(ctx context.Context, req models.CreateAssessmentRequest) (*models.Assessment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/assessments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool               `json:"success"`
		Data    *models.Assessment `json:"data"`
		Error   *errorBody         `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// GetAssessment retrieves an assessment by ID
func (c *Client) GetAssessment(ctx context.Context, id int) (*models.Assessment, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/assessments/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool               `json:"success"`
		Data    *models.Assessment `json:"data"`
		Error   *errorBody         `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// GeneratePlan generates an upgrade plan from a stored assessment
func (c *Client) GeneratePlan(ctx context.Context, assessmentID int, workflowType string) (*models.UpgradePlan, error) {
	req := models.GeneratePlanRequest{
		AssessmentID: assessmentID,
		WorkflowType: workflowType,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/plans/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                `json:"success"`
		Data    *models.UpgradePlan `json:"data"`
		Error   *errorBody          `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// GetPlan retrieves an upgrade plan by ID
func (c *Client) GetPlan(ctx context.Context, id int) (*models.UpgradePlan, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/plans/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                `json:"success"`
		Data    *models.UpgradePlan `json:"data"`
		Error   *errorBody          `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// ListPlans retrieves a list of upgrade plans
func (c *Client) ListPlans(ctx context.Context, opts ListPlanOptions) ([]*models.UpgradePlan, error) {
	path := "/api/v1/plans?"
	if opts.Status != "" {
		path += fmt.Sprintf("status=%s&", opts.Status)
	}
	if opts.Limit > 0 {
		path += fmt.Sprintf("limit=%d&", opts.Limit)
	}
	if opts.Offset > 0 {
		path += fmt.Sprintf("offset=%d&", opts.Offset)
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Plans []*models.UpgradePlan `json:"plans"`
			Total int                   `json:"total"`
		} `json:"data"`
		Error *errorBody `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Plans, nil
}

// ToggleStep flips the completion state of one plan step and returns
// the updated plan
func (c *Client) ToggleStep(ctx context.Context, planID, stepID int) (*models.UpgradePlan, error) {
	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/plans/%d/steps/%d/toggle", planID, stepID), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                `json:"success"`
		Data    *models.UpgradePlan `json:"data"`
		Error   *errorBody          `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// UpdatePlan applies a partial metadata update to a plan
func (c *Client) UpdatePlan(ctx context.Context, planID int, update models.PlanMetadataUpdate) (*models.UpgradePlan, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "PATCH", fmt.Sprintf("/api/v1/plans/%d", planID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                `json:"success"`
		Data    *models.UpgradePlan `json:"data"`
		Error   *errorBody          `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// ListResources retrieves the resource library
func (c *Client) ListResources(ctx context.Context, opts ResourceOptions) ([]*models.Resource, error) {
	path := "/api/v1/resources?"
	if opts.Category != "" {
		path += fmt.Sprintf("category=%s&", opts.Category)
	}
	if opts.SkillLevel != "" {
		path += fmt.Sprintf("skill_level=%s&", opts.SkillLevel)
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Resources []*models.Resource `json:"resources"`
			Total     int                `json:"total"`
		} `json:"data"`
		Error *errorBody `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Resources, nil
}

// GetResource retrieves one resource by ID
func (c *Client) GetResource(ctx context.Context, id int) (*models.Resource, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/resources/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool             `json:"success"`
		Data    *models.Resource `json:"data"`
		Error   *errorBody       `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// ListTemplates retrieves all workflow templates
func (c *Client) ListTemplates(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/templates", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Templates []*models.WorkflowTemplate `json:"templates"`
			Total     int                        `json:"total"`
		} `json:"data"`
		Error *errorBody `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Templates, nil
}

// GetTemplate retrieves one workflow template by type
func (c *Client) GetTemplate(ctx context.Context, workflowType string) (*models.WorkflowTemplate, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/templates/"+workflowType, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                     `json:"success"`
		Data    *models.WorkflowTemplate `json:"data"`
		Error   *errorBody               `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
