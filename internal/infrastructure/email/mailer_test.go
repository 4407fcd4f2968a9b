package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-service/internal/core/domain"
)

func TestMailer_SendPostsProviderPayload(t *testing.T) {
	var gotAuth string
	var gotBody sendRequest

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %q, want %q", r.Method, http.MethodPost)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer provider.Close()

	m := NewMailer(Config{
		Endpoint: provider.URL,
		APIKey:   "key-1",
		Sender:   "no-reply@taskhub.io",
	}, zerolog.Nop())

	err := m.Send(context.Background(), domain.EmailJob{
		ID:   "job_1",
		Kind: domain.EmailWelcome,
		To:   "maria@example.com",
		Name: "Maria",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotAuth != "Bearer key-1" {
		t.Fatalf("authorization = %q, want bearer key", gotAuth)
	}
	if len(gotBody.Personalizations) != 1 || len(gotBody.Personalizations[0].To) != 1 {
		t.Fatalf("personalizations = %+v, want a single recipient", gotBody.Personalizations)
	}
	if got := gotBody.Personalizations[0].To[0].Email; got != "maria@example.com" {
		t.Fatalf("recipient = %q, want %q", got, "maria@example.com")
	}
	if gotBody.From.Email != "no-reply@taskhub.io" {
		t.Fatalf("sender = %q, want configured sender", gotBody.From.Email)
	}
	if len(gotBody.Content) != 1 || !strings.Contains(gotBody.Content[0].Value, "Maria") {
		t.Fatalf("content = %+v, want a body addressing the user by name", gotBody.Content)
	}
}

func TestMailer_SendComposesKindSpecificMessages(t *testing.T) {
	welcomeSubject, welcomeBody := composeMessage(domain.EmailJob{Kind: domain.EmailWelcome, Name: "Ana"})
	cancelSubject, cancelBody := composeMessage(domain.EmailJob{Kind: domain.EmailCancellation, Name: "Ana"})

	if welcomeSubject == cancelSubject {
		t.Fatalf("welcome and cancellation share subject %q", welcomeSubject)
	}
	if !strings.Contains(welcomeBody, "Welcome") || !strings.Contains(welcomeBody, "Ana") {
		t.Fatalf("welcome body = %q, want a greeting naming the user", welcomeBody)
	}
	if !strings.Contains(cancelBody, "Goodbye") || !strings.Contains(cancelBody, "Ana") {
		t.Fatalf("cancellation body = %q, want a farewell naming the user", cancelBody)
	}
}

func TestMailer_SendReturnsErrorForNon2xx(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer provider.Close()

	m := NewMailer(Config{Endpoint: provider.URL, APIKey: "key-1", Sender: "no-reply@taskhub.io"}, zerolog.Nop())

	err := m.Send(context.Background(), domain.EmailJob{ID: "job_1", Kind: domain.EmailWelcome, To: "maria@example.com"})
	if err == nil {
		t.Fatal("expected send error")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("error = %v, want status 502", err)
	}
}

func TestMailer_DisabledModeSkipsProvider(t *testing.T) {
	hits := 0
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer provider.Close()

	// No API key: deliveries are logged and dropped.
	m := NewMailer(Config{Endpoint: provider.URL, Sender: "no-reply@taskhub.io"}, zerolog.Nop())

	err := m.Send(context.Background(), domain.EmailJob{ID: "job_1", Kind: domain.EmailWelcome, To: "maria@example.com"})
	if err != nil {
		t.Fatalf("send in disabled mode: %v", err)
	}
	if hits != 0 {
		t.Fatalf("provider hits = %d, want 0", hits)
	}
}
