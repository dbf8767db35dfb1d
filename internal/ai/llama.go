package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"promptgate/internal/prompt"
)

// LlamaConfig fixes the sampling parameters of the alternative hosted
// text-generation backend; callers only supply the dialogue.
type LlamaConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Persona           string
	Temperature       float64
	TopP              float64
	MaxLength         int
	RepetitionPenalty float64
}

type LlamaClient struct {
	cfg        LlamaConfig
	httpClient *http.Client
}

func NewLlamaClient(cfg LlamaConfig, timeout time.Duration) *LlamaClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &LlamaClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate flattens the turn sequence into a single dialogue-formatted prompt,
// streams the completion, and concatenates the fragments into one string.
func (c *LlamaClient) Generate(ctx context.Context, turns []prompt.Turn) (string, error) {
	reqBody := map[string]interface{}{
		"model":              c.cfg.Model,
		"prompt":             FlattenDialogue(c.cfg.Persona, turns),
		"stream":             true,
		"temperature":        c.cfg.Temperature,
		"top_p":              c.cfg.TopP,
		"max_tokens":         c.cfg.MaxLength,
		"repetition_penalty": c.cfg.RepetitionPenalty,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llama request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llama request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llama response status %d: %s", resp.StatusCode, string(raw))
	}

	var full strings.Builder
	err = readSSE(resp.Body, func(payload string) error {
		var chunk struct {
			Choices []struct {
				Text string `json:"text"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil // skip malformed keep-alive frames
		}
		if len(chunk.Choices) > 0 {
			full.WriteString(chunk.Choices[0].Text)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return full.String(), nil
}

// FlattenDialogue renders turns as a single "User: ...\n\nAssistant: ...\n\n"
// transcript under a persona line, the format llama-style instruct backends
// expect instead of role arrays.
func FlattenDialogue(persona string, turns []prompt.Turn) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")
	for _, turn := range turns {
		switch turn.Role {
		case "assistant":
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Assistant: ")
	return b.String()
}
