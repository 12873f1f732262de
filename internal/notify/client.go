// Package notify предоставляет клиент вебхука для уведомления водителей о назначениях.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client инкапсулирует HTTP-взаимодействие с сервисом уведомлений.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// AssignmentEvent описывает назначение водителя на услугу.
type AssignmentEvent struct {
	ServiceID string    `json:"service_id"`
	DriverID  string    `json:"driver_id"`
	Title     string    `json:"title"`
	StartAt   time.Time `json:"start_at"`
}

// NewClient создаёт HTTP-клиент для отправки уведомлений по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendAssignment отправляет уведомление о назначении водителя.
// Возвращает паузу из заголовка Retry-After при ответе 429.
func (c *Client) SendAssignment(ctx context.Context, ev AssignmentEvent) (time.Duration, error) {
	if c == nil || c.baseURL == "" {
		return 0, fmt.Errorf("notify client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("marshal event: %w", err)
	}

	url := base + "/api/events/assignment"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Duration(0)
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return retryAfter, fmt.Errorf("notify rate limited")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return 0, nil
}
