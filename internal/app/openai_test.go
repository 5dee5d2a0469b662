package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// chatServer serves canned chat completion responses and records requests.
// Every response carries usage numbers so tests never touch the tokenizer.
func chatServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenAIClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewOpenAIClient("test-key", "gpt-4o-mini", srv.URL, 512, Pricing{PromptPer1K: 1.0, CompletionPer1K: 2.0})
	return srv, client
}

func completionBody(content string, promptTokens, completionTokens int) string {
	quoted, _ := json.Marshal(content)
	return fmt.Sprintf(`{"choices":[{"message":{"content":%s}}],"usage":{"prompt_tokens":%d,"completion_tokens":%d}}`,
		quoted, promptTokens, completionTokens)
}

func TestQueryReturnsContent(t *testing.T) {
	var gotReq chatRequest
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionBody("hello from the model", 100, 50)))
	})

	conversation := []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "working"},
		{Role: RoleObservation, Content: "exit 0"},
	}
	reply, err := client.Query(context.Background(), conversation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello from the model" {
		t.Fatalf("reply = %q", reply)
	}

	if gotReq.Model != "gpt-4o-mini" {
		t.Fatalf("request model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 4 {
		t.Fatalf("wire messages = %d, want 4", len(gotReq.Messages))
	}
	if gotReq.Messages[3].Role != "user" {
		t.Fatalf("observation wire role = %q, want user", gotReq.Messages[3].Role)
	}

	tel := client.Telemetry()
	if tel.CallsMade != 1 {
		t.Fatalf("calls made = %d, want 1", tel.CallsMade)
	}
	// 100 prompt tokens at 1.0/1k plus 50 completion tokens at 2.0/1k.
	want := 0.1 + 0.1
	if diff := tel.AccumulatedCost - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("cost = %f, want %f", tel.AccumulatedCost, want)
	}
}

func TestQueryServerErrorIsModelError(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"model is overloaded","type":"server_error"}}`))
	})

	_, err := client.Query(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("error = %T, want *ModelError", err)
	}
	if !strings.Contains(modelErr.Error(), "model is overloaded") {
		t.Fatalf("error should carry the server's message, got %q", modelErr.Error())
	}
	if got := client.Telemetry().CallsMade; got != 0 {
		t.Fatalf("calls made = %d, want 0: a failed exchange is not charged", got)
	}
}

func TestQueryEmptyContentRejectedButCharged(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("", 10, 0)))
	})

	_, err := client.Query(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("error = %T, want *ModelError", err)
	}
	tel := client.Telemetry()
	if tel.CallsMade != 1 {
		t.Fatalf("calls made = %d, want 1: a completed exchange is charged even when rejected", tel.CallsMade)
	}
	if tel.AccumulatedCost <= 0 {
		t.Fatalf("cost = %f, want > 0", tel.AccumulatedCost)
	}
}

func TestQueryRejectsBadConversation(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server for invalid input")
	})

	if _, err := client.Query(context.Background(), nil); err == nil {
		t.Fatal("empty conversation must be rejected")
	}
	ending := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	if _, err := client.Query(context.Background(), ending); err == nil {
		t.Fatal("a conversation ending with an assistant message must be rejected")
	}
	if got := client.Telemetry().CallsMade; got != 0 {
		t.Fatalf("calls made = %d, want 0 for rejected input", got)
	}
}

func TestQueryRequiresAPIKey(t *testing.T) {
	client := NewOpenAIClient("", "gpt-4o-mini", "http://127.0.0.1:1", 512, Pricing{})
	_, err := client.Query(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("error = %T, want *ModelError", err)
	}
}

func TestQueryMalformedBody(t *testing.T) {
	_, client := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Query(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("error = %T, want *ModelError", err)
	}
	if got := client.Telemetry().CallsMade; got != 0 {
		t.Fatalf("calls made = %d, want 0 for an unparseable body", got)
	}
}
