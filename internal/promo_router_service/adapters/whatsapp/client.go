package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v19.0"

	maxLoggedBody = 512
)

// PhoneNormalizer rewrites a recipient id before it is sent.
type PhoneNormalizer interface {
	Normalize(raw string) string
}

type ClientConfig struct {
	BaseURL     string
	APIVersion  string
	PhoneID     string
	AccessToken string
	Timeout     time.Duration
}

// Client sends text messages through the WhatsApp Cloud API.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	normalizer PhoneNormalizer
	endpoint   string
	token      string
}

func NewClient(cfg ClientConfig, normalizer PhoneNormalizer, logger *slog.Logger, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	return &Client{
		logger:     logger.With("component", "whatsapp_client"),
		httpClient: httpClient,
		normalizer: normalizer,
		endpoint:   fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(cfg.BaseURL, "/"), cfg.APIVersion, cfg.PhoneID),
		token:      cfg.AccessToken,
	}
}

// SendMessageRequest is the Cloud API body for a plain text message.
type SendMessageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             TextContent `json:"text"`
}

type TextContent struct {
	Body string `json:"body"`
}

type SendMessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// GraphErrorResponse is the error body returned by the Graph API.
type GraphErrorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// Send posts msg once. It never returns an error on its own: failures are
// reported in the SendResult, wrapped with domain.ErrSendFailure.
func (c *Client) Send(ctx context.Context, msg domain.OutboundMessage) domain.SendResult {
	start := time.Now()
	result := c.send(ctx, msg)

	outcome := "success"
	switch {
	case result.StatusCode == 0:
		outcome = "transport_error"
	case !result.Succeeded():
		outcome = "rejected"
	}
	sendRequestsTotal.WithLabelValues(outcome, strconv.Itoa(result.StatusCode)).Inc()
	sendRequestDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return result
}

func (c *Client) send(ctx context.Context, msg domain.OutboundMessage) domain.SendResult {
	recipient := msg.RecipientID
	if c.normalizer != nil {
		recipient = c.normalizer.Normalize(msg.RecipientID)
	}
	logger := c.logger.With("recipient", recipient)

	reqBytes, err := json.Marshal(SendMessageRequest{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             TextContent{Body: msg.BodyText},
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to marshal send request", "error", err)
		return domain.SendResult{Err: fmt.Errorf("%w: marshal request: %v", domain.ErrSendFailure, err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create send request", "error", err)
		return domain.SendResult{Err: fmt.Errorf("%w: build request: %v", domain.ErrSendFailure, err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.ErrorContext(ctx, "Send request failed", "error", err)
		return domain.SendResult{ResponseBody: err.Error(), Err: fmt.Errorf("%w: %v", domain.ErrSendFailure, err)}
	}
	defer httpResp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(httpResp.Body, 64<<10))
	result := domain.SendResult{StatusCode: httpResp.StatusCode, ResponseBody: string(respBody)}
	if readErr != nil {
		logger.WarnContext(ctx, "Failed to read send response body", "status_code", httpResp.StatusCode, "error", readErr)
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		var ok SendMessageResponse
		messageID := ""
		if err := json.Unmarshal(respBody, &ok); err == nil && len(ok.Messages) > 0 {
			messageID = ok.Messages[0].ID
		}
		logger.InfoContext(ctx, "Message sent", "status_code", httpResp.StatusCode, "message_id", messageID)
		return result
	}

	errMsg := fmt.Sprintf("status %d", httpResp.StatusCode)
	var graphErr GraphErrorResponse
	if err := json.Unmarshal(respBody, &graphErr); err == nil && graphErr.Error.Message != "" {
		errMsg = fmt.Sprintf("status %d, code %d: %s", httpResp.StatusCode, graphErr.Error.Code, graphErr.Error.Message)
	}
	logger.WarnContext(ctx, "Send API rejected message", "status_code", httpResp.StatusCode, "body", truncate(result.ResponseBody, maxLoggedBody))
	result.Err = fmt.Errorf("%w: %s", domain.ErrSendFailure, errMsg)
	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
