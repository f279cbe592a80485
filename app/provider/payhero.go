package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nyota-loans/ms-go-payments/app/entity"
)

// ErrNoExternalReference is returned when neither callback payload shape
// carries an external reference.
var ErrNoExternalReference = errors.New("no external reference in callback payload")

const defaultPayHeroBaseURL = "https://backend.payhero.co.ke"

type PayHeroConfig struct {
	APIKey      string
	APISecret   string
	BaseURL     string
	ChannelID   int64
	HTTPTimeout time.Duration
}

type PayHeroProvider struct {
	cfg    PayHeroConfig
	client *http.Client
}

func NewPayHeroProvider(cfg PayHeroConfig) *PayHeroProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultPayHeroBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &PayHeroProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *PayHeroProvider) Name() string {
	return entity.ProviderMpesa
}

func (p *PayHeroProvider) InitiateSTKPush(ctx context.Context, input *STKPushInput) (*STKPushOutput, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" || strings.TrimSpace(p.cfg.APISecret) == "" {
		return nil, ErrNotConfigured
	}

	payload := map[string]interface{}{
		"amount":             input.Amount,
		"phone_number":       input.PhoneNumber,
		"channel_id":         p.cfg.ChannelID,
		"provider":           entity.ProviderMpesa,
		"external_reference": input.ExternalReference,
		"customer_name":      input.CustomerName,
		"callback_url":       input.CallbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/v2/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.cfg.APIKey, p.cfg.APISecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{
			StatusCode: resp.StatusCode,
			Message:    gatewayMessage(respBody),
		}
	}

	var accepted struct {
		CheckoutRequestID string `json:"checkout_request_id"`
	}
	if err := json.Unmarshal(respBody, &accepted); err != nil {
		return nil, fmt.Errorf("unexpected gateway response: %w", err)
	}

	result := &STKPushOutput{}
	if s := strings.TrimSpace(accepted.CheckoutRequestID); s != "" {
		result.CheckoutRequestID = &s
	}

	return result, nil
}

// ParseCallback normalizes the two payload shapes PayHero delivers: result
// fields either at the top level or nested one level under "response", with
// field names in either snake_case or PascalCase. The nested location wins
// when both are present.
func (p *PayHeroProvider) ParseCallback(payload []byte) (*CallbackEvent, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, err
	}

	fields := root
	if raw, ok := root["response"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil && nested != nil {
			fields = nested
		}
	}

	externalReference := stringField(fields, "external_reference", "ExternalReference")
	if externalReference == "" {
		return nil, ErrNoExternalReference
	}

	resultCode := stringField(fields, "result_code", "ResultCode")
	status := entity.PaymentStatusFailed
	if resultCode == "0" {
		status = entity.PaymentStatusCompleted
	}

	event := &CallbackEvent{
		ExternalReference: externalReference,
		ResultCode:        resultCode,
		Status:            status,
	}
	if s := stringField(fields, "checkout_request_id", "CheckoutRequestID"); s != "" {
		event.CheckoutRequestID = &s
	}

	return event, nil
}

func (p *PayHeroProvider) QueryTransactionStatus(ctx context.Context, externalReference string) (string, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" || strings.TrimSpace(p.cfg.APISecret) == "" {
		return "", ErrNotConfigured
	}

	endpoint := p.cfg.BaseURL + "/api/v2/transaction-status?reference=" + url.QueryEscape(externalReference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.APIKey, p.cfg.APISecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("transaction status query failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}

	switch strings.ToUpper(strings.TrimSpace(payload.Status)) {
	case "SUCCESS":
		return entity.PaymentStatusCompleted, nil
	case "FAILED", "CANCELLED":
		return entity.PaymentStatusFailed, nil
	default:
		// QUEUED and anything unrecognized: no transition.
		return "", nil
	}
}

// stringField tries the candidate keys in priority order and renders numeric
// values without a fractional part, so result_code 0 and "0" compare equal.
func stringField(fields map[string]json.RawMessage, candidates ...string) string {
	for _, key := range candidates {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		var asString string
		if err := json.Unmarshal(raw, &asString); err == nil {
			if s := strings.TrimSpace(asString); s != "" {
				return s
			}
			continue
		}

		var asNumber json.Number
		if err := json.Unmarshal(raw, &asNumber); err == nil {
			return asNumber.String()
		}
	}
	return ""
}

func gatewayMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		return strings.TrimSpace(payload.Message)
	}
	return "failed to initiate payment"
}
