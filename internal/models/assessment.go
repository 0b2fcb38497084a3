package models

import "time"

// Branch protection levels reported by an assessment
const (
	ProtectionNone          = "none"
	ProtectionBasic         = "basic"
	ProtectionComprehensive = "comprehensive"
)

// CodeReviewProcess captures the review-related practice flags
type CodeReviewProcess struct {
	RequiredReviews  bool `json:"requiredReviews"`
	AutomatedChecks  bool `json:"automatedChecks"`
	CodeQualityGates bool `json:"codeQualityGates"`
}

// RepositorySettings captures the repository configuration flags
type RepositorySettings struct {
	BranchProtection  bool `json:"branchProtection"`
	MergeRestrictions bool `json:"mergeRestrictions"`
	StatusChecks      bool `json:"statusChecks"`
}

// CollaborationTools captures which collaboration practices are in place
type CollaborationTools struct {
	IssueTracking     bool `json:"issueTracking"`
	ProjectManagement bool `json:"projectManagement"`
	Documentation     bool `json:"documentation"`
}

// Assessment is a snapshot of a team's source-control practices.
// Assessments are immutable once created; there is no update path.
type Assessment struct {
	ID                 int                `json:"id"`
	TeamSize           string             `json:"teamSize"`
	BranchingStrategy  string             `json:"branchingStrategy"`
	BranchProtection   string             `json:"branchProtection"`
	CodeReviewProcess  CodeReviewProcess  `json:"codeReviewProcess"`
	RepositorySettings RepositorySettings `json:"repositorySettings"`
	CollaborationTools CollaborationTools `json:"collaborationTools"`
	CurrentChallenges  string             `json:"currentChallenges,omitempty"`
	SkillLevel         string             `json:"skillLevel"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// CreateAssessmentRequest represents a request to record an assessment
type CreateAssessmentRequest struct {
	TeamSize           string             `json:"teamSize"`
	BranchingStrategy  string             `json:"branchingStrategy"`
	BranchProtection   string             `json:"branchProtection"`
	CodeReviewProcess  CodeReviewProcess  `json:"codeReviewProcess"`
	RepositorySettings RepositorySettings `json:"repositorySettings"`
	CollaborationTools CollaborationTools `json:"collaborationTools"`
	CurrentChallenges  string             `json:"currentChallenges,omitempty"`
	SkillLevel         string             `json:"skillLevel"`
}
