package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AIProvider describes one supported chat-completion backend. All entries
// speak the OpenAI chat-completions wire format.
type AIProvider struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	BaseURL string   `json:"base_url"`
	Models  []string `json:"models"`
}

// AIProviders is the fixed provider registry. The custom entry requires the
// user to supply a base URL.
var AIProviders = []AIProvider{
	{Key: "openai", Name: "OpenAI", BaseURL: "https://api.openai.com/v1", Models: []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"}},
	{Key: "deepseek", Name: "DeepSeek", BaseURL: "https://api.deepseek.com/v1", Models: []string{"deepseek-chat", "deepseek-coder"}},
	{Key: "moonshot", Name: "Moonshot", BaseURL: "https://api.moonshot.cn/v1", Models: []string{"moonshot-v1-8k", "moonshot-v1-32k", "moonshot-v1-128k"}},
	{Key: "custom", Name: "自定义", BaseURL: "", Models: nil},
}

// ValidAIProvider reports whether key names a registry entry.
func ValidAIProvider(key string) bool {
	for _, p := range AIProviders {
		if p.Key == key {
			return true
		}
	}
	return false
}

func providerBaseURL(key string) string {
	for _, p := range AIProviders {
		if p.Key == key {
			return p.BaseURL
		}
	}
	return ""
}

const aiSystemPrompt = `你是 Keep-Fit 健身应用的 AI 助手。你的职责是：

1. **训练建议**：根据用户的健身历史和身体状况，提供专业的训练建议
2. **饮食建议**：结合用户的训练目标，给出科学的营养和饮食建议
3. **计划制定**：帮助用户制定合理的训练计划，包括动作选择、组数、次数等

你的回答应该：
- 专业、准确、有科学依据
- 简洁明了，易于理解
- 针对用户的具体情况给出个性化建议
- 如果用户提供了健康数据，要结合数据分析

请用友好、鼓励的语气与用户交流，帮助他们坚持健身，达到目标。`

// ChatMessage is one turn of a conversation in OpenAI wire format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatConfig carries the per-request connection settings resolved from a
// stored user configuration.
type ChatConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// ErrUpstreamAI wraps a non-2xx reply from the provider.
var ErrUpstreamAI = errors.New("upstream AI error")

// AIClient forwards chat-completion requests to an OpenAI-compatible backend.
type AIClient struct {
	httpClient *http.Client
}

// NewAIClient builds a client with the given request timeout.
func NewAIClient(timeout time.Duration) *AIClient {
	return &AIClient{httpClient: &http.Client{Timeout: timeout}}
}

func (c *AIClient) endpoint(cfg ChatConfig) (string, error) {
	base := cfg.BaseURL
	if base == "" {
		base = providerBaseURL(cfg.Provider)
	}
	if base == "" {
		return "", errors.New("provider requires a base URL")
	}
	return strings.TrimRight(base, "/") + "/chat/completions", nil
}

func (c *AIClient) buildRequest(ctx context.Context, cfg ChatConfig, messages []ChatMessage, stream bool) (*http.Request, error) {
	url, err := c.endpoint(cfg)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"model":       cfg.Model,
		"messages":    append([]ChatMessage{{Role: "system", Content: aiSystemPrompt}}, messages...),
		"stream":      stream,
		"temperature": 0.7,
		"max_tokens":  2000,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	return req, nil
}

// Chat sends a blocking completion request and returns the assistant message.
func (c *AIClient) Chat(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error) {
	req, err := c.buildRequest(ctx, cfg, messages, false)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstreamAI, resp.StatusCode, string(detail))
	}

	var parsed struct {
		Choices []struct {
			Message ChatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ChatStream sends a streaming completion request and invokes emit for each
// content delta. It returns once the upstream signals [DONE] or closes.
func (c *AIClient) ChatStream(ctx context.Context, cfg ChatConfig, messages []ChatMessage, emit func(content string) error) error {
	req, err := c.buildRequest(ctx, cfg, messages, true)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamAI, resp.StatusCode, string(detail))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return nil
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed keep-alive or vendor-specific lines.
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := emit(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// BuildContextMessages prefixes the conversation with a status summary so
// the assistant answers with the user's data in mind.
func BuildContextMessages(health, training, goals, userMessage string) []ChatMessage {
	var messages []ChatMessage

	if health != "" || training != "" || goals != "" {
		var b strings.Builder
		b.WriteString("用户当前状态：\n")
		if health != "" {
			b.WriteString("- 健康数据：" + health + "\n")
		}
		if training != "" {
			b.WriteString("- 训练情况：" + training + "\n")
		}
		if goals != "" {
			b.WriteString("- 健身目标：" + goals + "\n")
		}
		messages = append(messages,
			ChatMessage{Role: "user", Content: b.String()},
			ChatMessage{Role: "assistant", Content: "好的，我已了解你的当前状态。请告诉我你想了解什么？"},
		)
	}

	return append(messages, ChatMessage{Role: "user", Content: userMessage})
}
