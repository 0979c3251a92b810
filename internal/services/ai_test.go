package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeCompletionServer stands in for the OpenAI chat-completion endpoint. The
// respond callback sees the decoded request and returns the assistant content.
func fakeCompletionServer(t *testing.T, respond func(req map[string]any) string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		content := respond(req)

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  req["model"],
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	return httptest.NewServer(mux)
}

func systemPromptOf(req map[string]any) string {
	messages, _ := req["messages"].([]any)
	if len(messages) == 0 {
		return ""
	}
	first, _ := messages[0].(map[string]any)
	content, _ := first["content"].(string)
	return content
}

func TestAIServiceRequestStructured(t *testing.T) {
	var captured map[string]any
	srv := fakeCompletionServer(t, func(req map[string]any) string {
		captured = req
		return `{"summary":"s","web_links":[],"flashcards":[],"quizzes":[]}`
	})
	defer srv.Close()

	ai := NewAIService("test-key", "gpt-4o", "gpt-4o-mini", srv.URL+"/v1")
	body, err := ai.RequestStructured(context.Background(), "course text")
	if err != nil {
		t.Fatalf("RequestStructured: %v", err)
	}
	if !strings.Contains(body, `"summary":"s"`) {
		t.Errorf("body = %q", body)
	}

	format, ok := captured["response_format"].(map[string]any)
	if !ok {
		t.Fatalf("request carried no response_format: %v", captured)
	}
	if format["type"] != "json_schema" {
		t.Errorf("response_format type = %v", format["type"])
	}
	schema, _ := format["json_schema"].(map[string]any)
	if schema["name"] != "study_materials" {
		t.Errorf("schema name = %v", schema["name"])
	}
	if schema["strict"] != true {
		t.Errorf("schema strict = %v", schema["strict"])
	}
	if !strings.Contains(systemPromptOf(captured), "study assistant") {
		t.Errorf("unexpected system prompt: %q", systemPromptOf(captured))
	}
}

func TestAIServiceLegacyCalls(t *testing.T) {
	srv := fakeCompletionServer(t, func(req map[string]any) string {
		system := systemPromptOf(req)
		switch {
		case strings.HasPrefix(system, "Summarize"):
			return "a plain summary"
		case strings.HasPrefix(system, "Create exactly 5 flashcards"):
			return `Here you go: [{"question":"q","answer":"a"}]`
		case strings.HasPrefix(system, "Generate exactly 5 multiple-choice"):
			return `[{"question":"q","options":["1","2","3","4"],"answer":"1"}]`
		default:
			return fmt.Sprintf("unexpected system prompt %q", system)
		}
	})
	defer srv.Close()

	ai := NewAIService("test-key", "gpt-4o", "gpt-4o-mini", srv.URL+"/v1")
	ctx := context.Background()

	summary, err := ai.RequestSummary(ctx, "text")
	if err != nil {
		t.Fatalf("RequestSummary: %v", err)
	}
	if summary != "a plain summary" {
		t.Errorf("summary = %q", summary)
	}

	flashcards, err := ai.RequestFlashcards(ctx, "text")
	if err != nil {
		t.Fatalf("RequestFlashcards: %v", err)
	}
	if !strings.Contains(flashcards, `"question":"q"`) {
		t.Errorf("flashcards = %q", flashcards)
	}

	quiz, err := ai.RequestQuiz(ctx, "text")
	if err != nil {
		t.Fatalf("RequestQuiz: %v", err)
	}
	if !strings.Contains(quiz, `"options"`) {
		t.Errorf("quiz = %q", quiz)
	}
}

func TestAIServiceUnconfigured(t *testing.T) {
	ai := NewAIService("", "gpt-4o", "gpt-4o-mini", "")
	if _, err := ai.RequestStructured(context.Background(), "text"); err != ErrAIUnavailable {
		t.Errorf("err = %v, want ErrAIUnavailable", err)
	}
}

func TestAIServiceTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ai := NewAIService("test-key", "gpt-4o", "gpt-4o-mini", srv.URL+"/v1")
	_, err := ai.RequestStructured(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindRequestFailed {
		t.Errorf("kind = %q, want %q", KindOf(err), KindRequestFailed)
	}
}
