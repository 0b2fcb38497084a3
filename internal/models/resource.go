package models

import "time"

// Resource is a library entry (tutorial, tool, best practice, training).
// Pure pass-through data; no computed logic attached.
type Resource struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	SkillLevel    string    `json:"skillLevel"`
	URL           string    `json:"url,omitempty"`
	Rating        int       `json:"rating"`
	DownloadCount int       `json:"downloadCount"`
	Icon          string    `json:"icon"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ResourceFilters defines filters for listing resources
type ResourceFilters struct {
	Category   string
	SkillLevel string
}
