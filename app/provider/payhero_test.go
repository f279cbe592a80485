package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseCallbackFlatAndNestedShapesMatch(t *testing.T) {
	p := NewPayHeroProvider(PayHeroConfig{APIKey: "key", APISecret: "secret"})

	flat := []byte(`{"external_reference":"NYOTA-1-abc","result_code":0,"checkout_request_id":"ws_CO_1"}`)
	nested := []byte(`{"response":{"external_reference":"NYOTA-1-abc","result_code":0,"checkout_request_id":"ws_CO_1"}}`)

	flatEvent, err := p.ParseCallback(flat)
	if err != nil {
		t.Fatalf("flat parse failed: %v", err)
	}
	nestedEvent, err := p.ParseCallback(nested)
	if err != nil {
		t.Fatalf("nested parse failed: %v", err)
	}

	if flatEvent.ExternalReference != nestedEvent.ExternalReference {
		t.Fatalf("references differ: %q vs %q", flatEvent.ExternalReference, nestedEvent.ExternalReference)
	}
	if flatEvent.Status != nestedEvent.Status {
		t.Fatalf("statuses differ: %q vs %q", flatEvent.Status, nestedEvent.Status)
	}
	if flatEvent.Status != "completed" {
		t.Fatalf("expected completed, got %q", flatEvent.Status)
	}
	if flatEvent.CheckoutRequestID == nil || *flatEvent.CheckoutRequestID != "ws_CO_1" {
		t.Fatal("expected checkout request id ws_CO_1")
	}
}

func TestParseCallbackPrefersNestedFields(t *testing.T) {
	p := NewPayHeroProvider(PayHeroConfig{})

	payload := []byte(`{"external_reference":"outer","response":{"external_reference":"inner","result_code":1}}`)
	event, err := p.ParseCallback(payload)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if event.ExternalReference != "inner" {
		t.Fatalf("expected nested reference to win, got %q", event.ExternalReference)
	}
	if event.Status != "failed" {
		t.Fatalf("expected failed, got %q", event.Status)
	}
}

func TestParseCallbackPascalCaseFields(t *testing.T) {
	p := NewPayHeroProvider(PayHeroConfig{})

	payload := []byte(`{"ExternalReference":"NYOTA-2-def","ResultCode":"0","CheckoutRequestID":"ws_CO_2"}`)
	event, err := p.ParseCallback(payload)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if event.ExternalReference != "NYOTA-2-def" {
		t.Fatalf("unexpected reference: %q", event.ExternalReference)
	}
	if event.Status != "completed" {
		t.Fatalf("expected completed for string result code 0, got %q", event.Status)
	}
}

func TestParseCallbackResultCodeMapping(t *testing.T) {
	p := NewPayHeroProvider(PayHeroConfig{})

	cases := []struct {
		payload string
		want    string
	}{
		{`{"external_reference":"r","result_code":0}`, "completed"},
		{`{"external_reference":"r","result_code":"0"}`, "completed"},
		{`{"external_reference":"r","result_code":1}`, "failed"},
		{`{"external_reference":"r","result_code":"1032"}`, "failed"},
		{`{"external_reference":"r"}`, "failed"},
	}

	for _, tc := range cases {
		event, err := p.ParseCallback([]byte(tc.payload))
		if err != nil {
			t.Fatalf("parse %s failed: %v", tc.payload, err)
		}
		if event.Status != tc.want {
			t.Fatalf("payload %s: expected %q, got %q", tc.payload, tc.want, event.Status)
		}
	}
}

func TestParseCallbackWithoutReference(t *testing.T) {
	p := NewPayHeroProvider(PayHeroConfig{})

	for _, payload := range []string{
		`{"result_code":0}`,
		`{"response":{"result_code":0}}`,
		`{}`,
	} {
		_, err := p.ParseCallback([]byte(payload))
		if !errors.Is(err, ErrNoExternalReference) {
			t.Fatalf("payload %s: expected ErrNoExternalReference, got %v", payload, err)
		}
	}
}

func TestInitiateSTKPushRequiresCredentials(t *testing.T) {
	p := NewPayHeroProvider(PayHeroConfig{})

	_, err := p.InitiateSTKPush(context.Background(), &STKPushInput{ExternalReference: "r", Amount: 500})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestInitiateSTKPushSendsPayloadAndParsesAcceptance(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Errorf("unexpected basic auth: %q %q", user, pass)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"checkout_request_id":"ws_CO_9"}`))
	}))
	defer server.Close()

	p := NewPayHeroProvider(PayHeroConfig{APIKey: "key", APISecret: "secret", BaseURL: server.URL, ChannelID: 4380})
	output, err := p.InitiateSTKPush(context.Background(), &STKPushInput{
		ExternalReference: "NYOTA-3-ghi",
		Amount:            500,
		PhoneNumber:       "254712345678",
		CustomerName:      "u1",
		CallbackURL:       "https://pay.example.com/payments/callback",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output.CheckoutRequestID == nil || *output.CheckoutRequestID != "ws_CO_9" {
		t.Fatal("expected checkout request id ws_CO_9")
	}

	if captured["external_reference"] != "NYOTA-3-ghi" {
		t.Fatalf("unexpected external_reference: %v", captured["external_reference"])
	}
	if captured["phone_number"] != "254712345678" {
		t.Fatalf("unexpected phone_number: %v", captured["phone_number"])
	}
	if captured["provider"] != "m-pesa" {
		t.Fatalf("unexpected provider: %v", captured["provider"])
	}
	if captured["channel_id"] != float64(4380) {
		t.Fatalf("unexpected channel_id: %v", captured["channel_id"])
	}
	if captured["callback_url"] != "https://pay.example.com/payments/callback" {
		t.Fatalf("unexpected callback_url: %v", captured["callback_url"])
	}
}

func TestInitiateSTKPushSurfacesGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"insufficient channel balance"}`))
	}))
	defer server.Close()

	p := NewPayHeroProvider(PayHeroConfig{APIKey: "key", APISecret: "secret", BaseURL: server.URL})
	_, err := p.InitiateSTKPush(context.Background(), &STKPushInput{ExternalReference: "r", Amount: 500})

	var gatewayErr *GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gatewayErr.Message != "insufficient channel balance" {
		t.Fatalf("unexpected gateway message: %q", gatewayErr.Message)
	}
}

func TestQueryTransactionStatusMapping(t *testing.T) {
	status := "SUCCESS"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("reference") == "" {
			t.Error("expected reference query param")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}))
	defer server.Close()

	p := NewPayHeroProvider(PayHeroConfig{APIKey: "key", APISecret: "secret", BaseURL: server.URL})

	got, err := p.QueryTransactionStatus(context.Background(), "NYOTA-4-jkl")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "completed" {
		t.Fatalf("expected completed, got %q", got)
	}

	status = "FAILED"
	if got, _ = p.QueryTransactionStatus(context.Background(), "NYOTA-4-jkl"); got != "failed" {
		t.Fatalf("expected failed, got %q", got)
	}

	status = "QUEUED"
	if got, _ = p.QueryTransactionStatus(context.Background(), "NYOTA-4-jkl"); got != "" {
		t.Fatalf("expected no transition for QUEUED, got %q", got)
	}
}
