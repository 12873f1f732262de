package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendAssignment_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/events/assignment" {
			t.Fatalf("path = %s, want /api/events/assignment", r.URL.Path)
		}

		var ev AssignmentEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.ServiceID != "svc-1" || ev.DriverID != "drv-1" {
			t.Fatalf("event = %+v", ev)
		}

		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	retry, err := client.SendAssignment(ctx, AssignmentEvent{
		ServiceID: "svc-1",
		DriverID:  "drv-1",
		Title:     "Airport transfer",
		StartAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("SendAssignment error: %v", err)
	}
	if retry != 0 {
		t.Fatalf("retry = %v, want 0", retry)
	}
}

func TestSendAssignment_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	retry, err := client.SendAssignment(context.Background(), AssignmentEvent{ServiceID: "svc-1"})
	if err == nil {
		t.Fatalf("expected error for 429")
	}
	if retry != 7*time.Second {
		t.Fatalf("retry = %v, want 7s", retry)
	}
}

func TestSendAssignment_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	if _, err := client.SendAssignment(context.Background(), AssignmentEvent{ServiceID: "svc-1"}); err == nil {
		t.Fatalf("expected error for 500")
	}
}

func TestSendAssignment_NotConfigured(t *testing.T) {
	var client *Client
	if _, err := client.SendAssignment(context.Background(), AssignmentEvent{}); err == nil {
		t.Fatalf("expected error for nil client")
	}

	empty := NewClient("")
	if _, err := empty.SendAssignment(context.Background(), AssignmentEvent{}); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
