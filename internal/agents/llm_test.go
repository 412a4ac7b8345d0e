package agents

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestGeminiClient_Generate(t *testing.T) {
	var captured map[string]any
	var path, key string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{
				"content": {"parts": [{"text": "Sentiment: "}, {"text": "Neutral"}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://example.com/dxy", "title": "DXY"}},
					{"retrievedContext": {}}
				]}
			}]
		}`)
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", DefaultFastModel, WithBaseURL(srv.URL+"/"))
	got, err := c.Generate(context.Background(), Prompt{Text: "hi", Model: DefaultSearchModel, WebSearch: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if path != "/models/"+DefaultSearchModel+":generateContent" {
		t.Errorf("path = %s", path)
	}
	if key != "secret" {
		t.Errorf("api key header = %q", key)
	}
	if _, ok := captured["tools"]; !ok {
		t.Error("search tool not requested")
	}
	if got.Text != "Sentiment: Neutral" {
		t.Errorf("Text = %q", got.Text)
	}
	if len(got.Sources) != 1 || got.Sources[0].URL != "https://example.com/dxy" || got.Sources[0].Title != "DXY" {
		t.Errorf("Sources = %+v", got.Sources)
	}
}

func TestGeminiClient_FastPathAndErrors(t *testing.T) {
	var captured map[string]any
	status := http.StatusOK

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = io.WriteString(w, `{"candidates": []}`)
		} else {
			_, _ = io.WriteString(w, `{"error": {"message": "quota"}}`)
		}
	}))
	defer srv.Close()

	c := NewGeminiClient("k", DefaultFastModel, WithBaseURL(srv.URL))
	got, err := c.Generate(context.Background(), Prompt{Text: "x", FastPath: true})
	if err != nil || got.Text != "" {
		t.Errorf("empty candidates = %+v, %v", got, err)
	}
	if _, ok := captured["generationConfig"]; !ok {
		t.Error("thinking budget not sent")
	}
	if _, ok := captured["tools"]; ok {
		t.Error("search tool sent without WebSearch")
	}

	status = http.StatusTooManyRequests
	_, err = c.Generate(context.Background(), Prompt{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestOpenAIClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		resp := openai.ChatCompletionResponse{
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "echo: " + req.Messages[0].Content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test")
	cfg.BaseURL = srv.URL + "/v1"
	c := NewOpenAIClientWithConfig(cfg, "gpt-4o-mini")

	got, err := c.Generate(context.Background(), Prompt{Text: "hello", Model: DefaultFastModel, WebSearch: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Text != "echo: hello" || got.Sources != nil {
		t.Errorf("Completion = %+v", got)
	}
	if c.Provider() != "openai" {
		t.Errorf("Provider = %s", c.Provider())
	}
}
