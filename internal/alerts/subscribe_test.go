package alerts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type confirmerStub struct {
	calls int
}

func (c *confirmerStub) AlertConfirmation(_ context.Context, role, country, email string) string {
	c.calls++
	return "Radar locked on " + role + " in " + country + " for " + email + "."
}

type insertFailingStore struct {
	*MemoryStore
}

func (insertFailingStore) Insert(context.Context, Alert) (Alert, error) {
	return Alert{}, errors.New("duplicate key")
}

func TestSubscribe(t *testing.T) {
	store := NewMemoryStore()
	confirm := &confirmerStub{}
	mail := &mailerStub{}

	subs := NewSubscriptions(store, confirm, mail, "", nil)
	subs.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	sub, err := subs.Subscribe(context.Background(), "ada@example.com", "Data Analyst", "Germany", "weekly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sub.Persisted || sub.EmailID != "msg-1" || confirm.calls != 1 {
		t.Fatalf("unexpected subscription: %+v", sub)
	}

	if sub.Message != "Radar locked on Data Analyst in Germany for ada@example.com." {
		t.Fatalf("unexpected message: %q", sub.Message)
	}

	active, _ := store.ListActive(context.Background())
	if len(active) != 1 || active[0].ID != sub.Alert.ID || active[0].Frequency != Weekly {
		t.Fatalf("expected stored alert, got %+v", active)
	}

	if len(mail.sent) != 1 {
		t.Fatalf("expected one confirmation email, got %d", len(mail.sent))
	}

	email := mail.sent[0]
	if email.Subject != "JobNado Radar Activated: Data Analyst" || !strings.Contains(email.HTML, sub.Message) {
		t.Fatalf("unexpected confirmation email: %+v", email)
	}
}

func TestSubscribeInsertFailureContinues(t *testing.T) {
	mail := &mailerStub{}
	subs := NewSubscriptions(insertFailingStore{NewMemoryStore()}, nil, mail, "", nil)

	sub, err := subs.Subscribe(context.Background(), "ada@example.com", "SRE", "Spain", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sub.Persisted {
		t.Fatal("expected persisted=false")
	}

	if sub.Message != "Radar active. Scanning for SRE in Spain. Reports will be sent to ada@example.com." {
		t.Fatalf("unexpected default message: %q", sub.Message)
	}

	if len(mail.sent) != 1 {
		t.Fatal("confirmation must still be sent")
	}
}

func TestSubscribeErrors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		subs := NewSubscriptions(NewMemoryStore(), nil, &mailerStub{}, "", nil)

		_, err := subs.Subscribe(context.Background(), "nope", "SRE", "Spain", "daily")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("email failure", func(t *testing.T) {
		store := NewMemoryStore()
		subs := NewSubscriptions(store, nil, &mailerStub{err: errors.New("provider down")}, "", nil)

		sub, err := subs.Subscribe(context.Background(), "ada@example.com", "SRE", "Spain", "daily")
		if err == nil || !strings.Contains(err.Error(), "provider down") {
			t.Fatalf("expected send error, got %v", err)
		}

		if sub == nil || !sub.Persisted {
			t.Fatalf("alert must remain stored, got %+v", sub)
		}
	})

	t.Run("no mailer", func(t *testing.T) {
		sub, err := NewSubscriptions(NewMemoryStore(), nil, nil, "", nil).Subscribe(context.Background(), "ada@example.com", "SRE", "Spain", "daily")
		if err != nil || sub.EmailID != "" {
			t.Fatalf("expected silent skip, got %+v, %v", sub, err)
		}
	})
}

func TestUnsubscribe(t *testing.T) {
	store := NewMemoryStore()
	alerts := seed(t, store, "SRE")
	subs := NewSubscriptions(store, nil, nil, "", nil)

	if err := subs.Unsubscribe(context.Background(), alerts[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, _ := store.ListActive(context.Background())
	if len(active) != 0 {
		t.Fatalf("expected no active alerts, got %+v", active)
	}

	if err := subs.Unsubscribe(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
