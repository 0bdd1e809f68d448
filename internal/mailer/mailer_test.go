package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestSend(t *testing.T) {
	var gotAuth, gotType string
	var gotEmail Email

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotEmail); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"msg-123"}`))
	}))
	defer srv.Close()

	client := New("re_test", zap.NewNop())
	client.BaseURL = srv.URL + "/"

	id, err := client.Send(context.Background(), Email{
		From:    DefaultFrom,
		To:      []string{"user@example.com"},
		Subject: "JobNado Alert: 2 New Data Analyst Jobs",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id != "msg-123" {
		t.Fatalf("unexpected id: %q", id)
	}

	if gotAuth != "Bearer re_test" || gotType != "application/json" {
		t.Fatalf("unexpected headers: auth=%q type=%q", gotAuth, gotType)
	}

	if gotEmail.From != DefaultFrom || len(gotEmail.To) != 1 || gotEmail.To[0] != "user@example.com" || gotEmail.HTML != "<p>hi</p>" {
		t.Fatalf("unexpected payload: %+v", gotEmail)
	}
}

func TestSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	client := New("re_test", zap.NewNop())
	client.BaseURL = srv.URL

	_, err := client.Send(context.Background(), Email{To: []string{"user@example.com"}})

	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("expected SendError, got %v", err)
	}

	if sendErr.StatusCode != http.StatusUnprocessableEntity || sendErr.Body != `{"message":"invalid from address"}` {
		t.Fatalf("unexpected send error: %+v", sendErr)
	}
}

func TestSendValidation(t *testing.T) {
	if _, err := New("", nil).Send(context.Background(), Email{To: []string{"a@b.c"}}); err == nil {
		t.Fatal("expected error without api key")
	}

	if _, err := New("key", nil).Send(context.Background(), Email{}); err == nil {
		t.Fatal("expected error without recipients")
	}
}
