// Package llm provides a client for the OpenAI chat completions API.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 30 * time.Second
)

// Message is a single chat message sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the completion contract the intent extractor depends on.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Client calls the OpenAI chat completions endpoint over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	stream     bool
	httpClient *http.Client
}

// Config describes what is needed to reach the completion service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Stream  bool
	Timeout time.Duration
}

// NewClient creates a completion client from the config.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   cfg.Model,
		stream:  cfg.Stream,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Complete sends the messages to the completion service and returns the full
// response text. In streaming mode the token chunks are concatenated before
// returning; callers never see partial output.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0.2,
		"stream":      c.stream,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %v", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("completion service returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	if c.stream {
		return accumulateStream(resp.Body)
	}
	return decodeCompletion(resp.Body)
}

// decodeCompletion reads a non-streamed chat completion response.
func decodeCompletion(body io.Reader) (string, error) {
	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %v", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("completion response contains no choices")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("completion response is empty")
	}
	return content, nil
}

// accumulateStream consumes the SSE token stream and concatenates every delta
// into one string. The stream is finite and not restartable; parsing of the
// result must not begin until it is exhausted.
func accumulateStream(body io.Reader) (string, error) {
	var builder strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", fmt.Errorf("failed to decode stream chunk: %v", err)
		}
		if len(chunk.Choices) > 0 {
			builder.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("completion stream interrupted: %v", err)
	}

	content := strings.TrimSpace(builder.String())
	if content == "" {
		return "", fmt.Errorf("completion stream produced no content")
	}
	return content, nil
}
