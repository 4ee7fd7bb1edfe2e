package dto

// TelegramTestRequest carries optional custom text.
type TelegramTestRequest struct {
	Text string `json:"text"`
}
