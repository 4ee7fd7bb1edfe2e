package dto

// SupportRequest is the public contact form.
type SupportRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Channel string `json:"channel"`
	Message string `json:"message"`
	Source  string `json:"source"`
}
