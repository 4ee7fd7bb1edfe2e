package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/spec-kit/gatelaunch/internal/domain"
)

// chatRecipient addresses a chat by numeric id or @username.
type chatRecipient string

func (c chatRecipient) Recipient() string { return string(c) }

// TelegramProvider sends notifications through the Bot API. The bot runs
// offline: it never polls for updates, it only calls send methods.
type TelegramProvider struct {
	bot    *tele.Bot
	chatID string
}

// TelegramCheck is the diagnostic result of Check.
type TelegramCheck struct {
	OK          bool   `json:"ok"`
	BotUsername string `json:"botUsername,omitempty"`
	ChatTitle   string `json:"chatTitle,omitempty"`
	ChatType    string `json:"chatType,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewTelegramProvider builds an offline bot. apiURL overrides the Bot API base URL when non-empty.
func NewTelegramProvider(token, chatID, apiURL string, timeout time.Duration) (*TelegramProvider, error) {
	if token == "" || chatID == "" {
		return nil, errors.New("telegram token and chat id are required")
	}
	bot, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   token,
		Offline: true,
		Client:  newHTTPClient(timeout),
	})
	if err != nil {
		return nil, err
	}
	return &TelegramProvider{bot: bot, chatID: chatID}, nil
}

func (p *TelegramProvider) Name() string { return "telegram" }

func (p *TelegramProvider) Send(ctx context.Context, n domain.Notification) error {
	_, err := p.SendText(ctx, FormatText(n))
	return err
}

// SendText posts text to the configured chat and returns the message id.
func (p *TelegramProvider) SendText(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg, err := p.bot.Send(chatRecipient(p.chatID), text, &tele.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// Check verifies the token with getMe and the chat with getChat.
func (p *TelegramProvider) Check(ctx context.Context) TelegramCheck {
	if err := ctx.Err(); err != nil {
		return TelegramCheck{Error: err.Error()}
	}
	var me struct {
		Result struct {
			Username string `json:"username"`
		} `json:"result"`
	}
	raw, err := p.bot.Raw("getMe", nil)
	if err != nil {
		return TelegramCheck{Error: fmt.Sprintf("getMe: %v", err)}
	}
	if err := json.Unmarshal(raw, &me); err != nil {
		return TelegramCheck{Error: fmt.Sprintf("getMe: %v", err)}
	}

	var chat struct {
		Result struct {
			Title     string `json:"title"`
			FirstName string `json:"first_name"`
			Type      string `json:"type"`
		} `json:"result"`
	}
	raw, err = p.bot.Raw("getChat", map[string]string{"chat_id": p.chatID})
	if err != nil {
		return TelegramCheck{BotUsername: me.Result.Username, Error: fmt.Sprintf("getChat: %v", err)}
	}
	if err := json.Unmarshal(raw, &chat); err != nil {
		return TelegramCheck{BotUsername: me.Result.Username, Error: fmt.Sprintf("getChat: %v", err)}
	}
	title := chat.Result.Title
	if title == "" {
		title = chat.Result.FirstName
	}
	return TelegramCheck{OK: true, BotUsername: me.Result.Username, ChatTitle: title, ChatType: chat.Result.Type}
}
