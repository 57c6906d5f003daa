package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
)

// OllamaDefaultDim is the embedding dimension of the default llama3 model.
const OllamaDefaultDim = 4096

// OllamaConfig configures the Ollama collaborator client.
type OllamaConfig struct {
	BaseURL       string
	EmbedModel    string
	GenerateModel string
	Timeout       time.Duration
}

// OllamaClient provides the embedding and generation collaborators over
// the Ollama HTTP API. Both calls are bounded by the configured timeout
// and honor caller cancellation.
type OllamaClient struct {
	baseURL       string
	embedModel    string
	generateModel string
	client        *http.Client
}

// NewOllamaClient creates a client with defaults for any unset field
// (http://localhost:11434, model llama3, 60s timeout).
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "llama3"
	}
	if cfg.GenerateModel == "" {
		cfg.GenerateModel = "llama3"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &OllamaClient{
		baseURL:       cfg.BaseURL,
		embedModel:    cfg.EmbedModel,
		generateModel: cfg.GenerateModel,
		client:        &http.Client{Timeout: cfg.Timeout},
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Embed generates an embedding for the given text.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{
		Model:  c.embedModel,
		Prompt: text,
	})
	if err != nil {
		return nil, helper.NewError("marshal embed request", err)
	}

	data, err := c.post(ctx, "/api/embeddings", body)
	if err != nil {
		return nil, err
	}

	var parsed ollamaEmbedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, helper.NewError("decode embed response", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, helper.NewError("decode embed response", fmt.Errorf("empty embedding"))
	}

	return parsed.Embedding, nil
}

// Generate produces answer text for the given prompt.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  c.generateModel,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", helper.NewError("marshal generate request", err)
	}

	data, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		return "", err
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", helper.NewError("decode generate response", err)
	}

	return parsed.Response, nil
}

// EmbedFunc returns the client's embedding collaborator function.
func (c *OllamaClient) EmbedFunc() EmbedFunc {
	return c.Embed
}

// GenerateFunc returns the client's generation collaborator function.
func (c *OllamaClient) GenerateFunc() GenerateFunc {
	return c.Generate
}

// post sends one request, retrying once on transport failure. HTTP error
// statuses are application-level and are not retried.
func (c *OllamaClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	resp, err := c.doPost(ctx, path, body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, helper.NewError("post "+path, fmt.Errorf("%w: %w", model.ErrConnectivity, ctx.Err()))
		}
		resp, err = c.doPost(ctx, path, body)
	}
	if err != nil {
		return nil, helper.NewError("post "+path, fmt.Errorf("%w: %w", model.ErrConnectivity, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, helper.NewError("read response", fmt.Errorf("%w: %w", model.ErrConnectivity, err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, helper.NewError("post "+path, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data)))
	}

	return data, nil
}

func (c *OllamaClient) doPost(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}
