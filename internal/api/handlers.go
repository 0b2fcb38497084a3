package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
	"github.com/canstralian/GitUpgradeNavigator/internal/plans"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// urlParamInt parses an integer URL parameter, returning ok=false on
// missing or malformed values
func urlParamInt(r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.planManager.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	// Probe registered backing services
	checks := s.serviceRegistry.HealthCheckAll(r.Context())
	for name, err := range checks {
		if err != nil {
			slog.Warn("backing service unhealthy", "name", name, "error", err)
			respondError(w, http.StatusServiceUnavailable, "not_ready", "backing service unavailable: "+name)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Assessment handlers

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.TeamSize == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "teamSize is required")
		return
	}
	if req.SkillLevel == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "skillLevel is required")
		return
	}

	assessment := &models.Assessment{
		TeamSize:           req.TeamSize,
		BranchingStrategy:  req.BranchingStrategy,
		BranchProtection:   req.BranchProtection,
		CodeReviewProcess:  req.CodeReviewProcess,
		RepositorySettings: req.RepositorySettings,
		CollaborationTools: req.CollaborationTools,
		CurrentChallenges:  req.CurrentChallenges,
		SkillLevel:         req.SkillLevel,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.repo.CreateAssessment(r.Context(), assessment); err != nil {
		slog.Error("failed to create assessment", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create assessment")
		return
	}

	respondJSON(w, http.StatusCreated, assessment)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	assessments, err := s.repo.ListAssessments(r.Context())
	if err != nil {
		slog.Error("failed to list assessments", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list assessments")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": assessments,
		"total":       len(assessments),
	})
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "assessment id must be an integer")
		return
	}

	assessment, err := s.repo.GetAssessment(r.Context(), id)
	if err != nil {
		slog.Error("failed to get assessment", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get assessment")
		return
	}
	if assessment == nil {
		respondError(w, http.StatusNotFound, "not_found", "assessment not found")
		return
	}

	respondJSON(w, http.StatusOK, assessment)
}

// Plan handlers

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req models.GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.AssessmentID <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "assessment_id is required")
		return
	}
	if req.WorkflowType == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "workflow_type is required")
		return
	}

	plan, err := s.planManager.Generate(r.Context(), req.AssessmentID, req.WorkflowType)
	if err != nil {
		switch {
		case errors.Is(err, plans.ErrAssessmentNotFound):
			respondError(w, http.StatusNotFound, "assessment_not_found", "assessment not found")
		case errors.Is(err, plans.ErrTemplateNotFound):
			respondError(w, http.StatusNotFound, "template_not_found", "workflow template not found")
		default:
			slog.Error("failed to generate plan", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to generate plan")
		}
		return
	}

	respondJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	filters := models.PlanListFilters{
		Status: models.PlanStatus(r.URL.Query().Get("status")),
		Limit:  50, // default
		Offset: 0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	planList, err := s.planManager.List(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list plans", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list plans")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"plans": planList,
		"total": len(planList),
	})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "plan id must be an integer")
		return
	}

	plan, err := s.planManager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "plan not found")
			return
		}
		slog.Error("failed to get plan", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get plan")
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleToggleStep(w http.ResponseWriter, r *http.Request) {
	planID, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "plan id must be an integer")
		return
	}

	stepID, ok := urlParamInt(r, "stepID")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "step id must be an integer")
		return
	}

	plan, err := s.planManager.ToggleStep(r.Context(), planID, stepID)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "plan not found")
			return
		}
		slog.Error("failed to toggle step", "error", err, "plan_id", planID, "step_id", stepID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to toggle step")
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "plan id must be an integer")
		return
	}

	var update models.PlanMetadataUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	plan, err := s.planManager.UpdateMetadata(r.Context(), planID, update)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "plan not found")
			return
		}
		slog.Error("failed to update plan", "error", err, "plan_id", planID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update plan")
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// Resource handlers

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	filters := models.ResourceFilters{
		Category:   r.URL.Query().Get("category"),
		SkillLevel: r.URL.Query().Get("skill_level"),
	}

	resources, err := s.repo.ListResources(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list resources", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list resources")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"resources": resources,
		"total":     len(resources),
	})
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "resource id must be an integer")
		return
	}

	resource, err := s.repo.GetResource(r.Context(), id)
	if err != nil {
		slog.Error("failed to get resource", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get resource")
		return
	}
	if resource == nil {
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	respondJSON(w, http.StatusOK, resource)
}

// Template handlers

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := s.templateLoader.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
		"total":     len(templates),
	})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	workflowType := chi.URLParam(r, "type")
	if workflowType == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "template type is required")
		return
	}

	template := s.templateLoader.GetByType(workflowType)
	if template == nil {
		respondError(w, http.StatusNotFound, "not_found", "workflow template not found")
		return
	}

	respondJSON(w, http.StatusOK, template)
}
