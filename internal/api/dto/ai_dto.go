package dto

// SyncRequest triggers a manual AI sync.
type SyncRequest struct {
	Force bool `json:"force"`
}

// AssistantRequest is a chat message for the assistant.
type AssistantRequest struct {
	Message string `json:"message"`
	Scope   string `json:"scope"`
}
