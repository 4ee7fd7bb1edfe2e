package dto

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

// StatusUpdateRequest is the body of every PATCH status endpoint.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
