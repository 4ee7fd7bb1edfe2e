package domain

import "time"

// AccessResource names a protected resource a user may request.
type AccessResource string

const (
	ResourceResearchVault  AccessResource = "research_vault"
	ResourceSecurityLab    AccessResource = "security_lab"
	ResourceEngineeringHub AccessResource = "engineering_hub"
)

// ParseAccessResource validates a resource identifier.
func ParseAccessResource(raw string) (AccessResource, bool) {
	switch r := AccessResource(raw); r {
	case ResourceResearchVault, ResourceSecurityLab, ResourceEngineeringHub:
		return r, true
	}
	return "", false
}

// DefaultAccessDuration is used when a request omits duration.
const DefaultAccessDuration = "single_task"

// AccessRequest asks staff for elevated access to a resource.
type AccessRequest struct {
	ID         string         `json:"id"`
	Resource   AccessResource `json:"resource"`
	UseCase    string         `json:"useCase"`
	Duration   string         `json:"duration"`
	Status     ReviewStatus   `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	ReviewedAt *time.Time     `json:"reviewedAt,omitempty"`
	ReviewedBy string         `json:"reviewedBy,omitempty"`
	UserID     string         `json:"userId"`
}

func (a AccessRequest) RecordID() string           { return a.ID }
func (a AccessRequest) OwnerID() string            { return a.UserID }
func (a AccessRequest) RecordStatus() string       { return string(a.Status) }
func (a AccessRequest) RecordCreatedAt() time.Time { return a.CreatedAt }
