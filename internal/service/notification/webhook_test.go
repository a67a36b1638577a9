package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookSend(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 0})
	}))
	defer srv.Close()

	n := NewWebhook(srv.URL, time.Second)
	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.MsgType != "text" || got.Content.Text != "hello" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestWebhookRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 19001, "msg": "bad token"})
	}))
	defer srv.Close()

	n := NewWebhook(srv.URL, time.Second)
	if err := n.Send(context.Background(), "hello"); err == nil {
		t.Fatalf("expected rejection error")
	}
}
