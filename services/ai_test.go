package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testChatConfig(baseURL string) ChatConfig {
	return ChatConfig{Provider: "custom", Model: "test-model", APIKey: "sk-test", BaseURL: baseURL}
}

func TestChatForwardsOpenAIRequest(t *testing.T) {
	var got struct {
		Model       string        `json:"model"`
		Messages    []ChatMessage `json:"messages"`
		Stream      bool          `json:"stream"`
		Temperature float64       `json:"temperature"`
		MaxTokens   int           `json:"max_tokens"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"好的"}}]}`)
	}))
	defer srv.Close()

	client := NewAIClient(5 * time.Second)
	reply, err := client.Chat(context.Background(), testChatConfig(srv.URL), []ChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "好的" {
		t.Errorf("reply = %q", reply)
	}

	if got.Model != "test-model" || got.Stream || got.Temperature != 0.7 || got.MaxTokens != 2000 {
		t.Errorf("request body = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hi" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewAIClient(5 * time.Second)
	_, err := client.Chat(context.Background(), testChatConfig(srv.URL), []ChatMessage{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrUpstreamAI) {
		t.Fatalf("err = %v, want ErrUpstreamAI", err)
	}
}

func TestChatCustomProviderRequiresBaseURL(t *testing.T) {
	client := NewAIClient(time.Second)
	_, err := client.Chat(context.Background(), ChatConfig{Provider: "custom", Model: "m", APIKey: "k"}, []ChatMessage{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for custom provider without base URL")
	}
}

func TestChatStreamCollectsDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Stream bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Stream {
			t.Errorf("expected stream request, got err=%v stream=%v", err, body.Stream)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"你\"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"好\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n")
	}))
	defer srv.Close()

	var chunks []string
	client := NewAIClient(5 * time.Second)
	err := client.ChatStream(context.Background(), testChatConfig(srv.URL), []ChatMessage{{Role: "user", Content: "hi"}}, func(content string) error {
		chunks = append(chunks, content)
		return nil
	})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	if got := strings.Join(chunks, ""); got != "你好" {
		t.Errorf("collected %q, want 你好", got)
	}
}

func TestChatStreamEmitErrorStopsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 10; i++ {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"c%d\"}}]}\n\n", i)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stop := errors.New("client gone")
	calls := 0
	client := NewAIClient(5 * time.Second)
	err := client.ChatStream(context.Background(), testChatConfig(srv.URL), []ChatMessage{{Role: "user", Content: "hi"}}, func(string) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want emit error", err)
	}
	if calls != 2 {
		t.Errorf("emit called %d times, want 2", calls)
	}
}

func TestValidAIProvider(t *testing.T) {
	for _, key := range []string{"openai", "deepseek", "moonshot", "custom"} {
		if !ValidAIProvider(key) {
			t.Errorf("ValidAIProvider(%q) = false", key)
		}
	}
	if ValidAIProvider("anthropic") {
		t.Error("ValidAIProvider(anthropic) = true")
	}
}

func TestBuildContextMessages(t *testing.T) {
	msgs := BuildContextMessages("体重70kg", "每周3次", "增肌", "给我建议")
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[0].Role != "user" || !strings.Contains(msgs[0].Content, "体重70kg") {
		t.Errorf("context message = %+v", msgs[0])
	}
	if msgs[1].Role != "assistant" {
		t.Errorf("second role = %q", msgs[1].Role)
	}
	if msgs[2].Content != "给我建议" {
		t.Errorf("last message = %+v", msgs[2])
	}

	plain := BuildContextMessages("", "", "", "hello")
	if len(plain) != 1 || plain[0].Content != "hello" {
		t.Errorf("no-context messages = %+v", plain)
	}
}
