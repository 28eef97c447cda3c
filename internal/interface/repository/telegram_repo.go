package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
)

// TelegramRepository delivers notifications through the Telegram Bot API.
type TelegramRepository struct {
	logger  logger.Logger
	client  *http.Client
	baseURL string
	token   string
}

// NewTelegramRepository creates a new Telegram notifier repository.
func NewTelegramRepository(baseURL, token string, logger logger.Logger) repository.NotifierRepository {
	return &TelegramRepository{
		logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		token:   token,
	}
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Notify sends an HTML message to the user. A 403 from the Bot API means
// the user blocked the bot or deleted the account; that surfaces as
// ErrUnreachable so the caller can drop the watch instead of retrying.
func (r *TelegramRepository) Notify(ctx context.Context, userID int64, message string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                userID,
		Text:                  message,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", r.baseURL, r.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode notification response: %w", err)
	}

	if !result.OK {
		if result.ErrorCode == http.StatusForbidden {
			r.logger.Warn("Recipient unreachable", "userId", userID, "description", result.Description)
			return fmt.Errorf("telegram %d %s: %w", result.ErrorCode, result.Description, repository.ErrUnreachable)
		}
		return fmt.Errorf("telegram send failed: %d %s", result.ErrorCode, result.Description)
	}

	r.logger.Debug("Notification delivered", "userId", userID)
	return nil
}
