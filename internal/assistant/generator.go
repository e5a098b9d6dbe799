// Package assistant hosts the conversation engine and its client for the
// external text-generation backend.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// FailureKind distinguishes the ways a generation call can go wrong, so
// the engine can branch on variants instead of sniffing message strings.
type FailureKind string

const (
	FailTimeout   FailureKind = "timeout"
	FailTransport FailureKind = "transport"
	FailStatus    FailureKind = "status"
	FailEmpty     FailureKind = "empty"
)

// GenerateError is the typed failure returned by Generator.Generate.
type GenerateError struct {
	Kind   FailureKind
	Status int // set for FailStatus
	Err    error
}

func (e *GenerateError) Error() string {
	if e.Kind == FailStatus {
		return fmt.Sprintf("generate: unexpected status %d", e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("generate: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generate: %s", e.Kind)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// Generator produces text for a composed prompt. The HTTP client is the
// production implementation; tests substitute their own.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// HTTPGenerator calls the generation backend over HTTP with a bounded
// client-side timeout. No retries: a failed call degrades to an apology
// upstream rather than hammering the backend.
type HTTPGenerator struct {
	url    string
	client *http.Client
}

// NewHTTPGenerator builds a generator for the given endpoint. timeout
// bounds the whole call including body read.
func NewHTTPGenerator(url string, timeout time.Duration) *HTTPGenerator {
	return &HTTPGenerator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Generate POSTs {prompt, max_tokens} and returns the generated text.
// Failures are always a *GenerateError.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt, MaxTokens: maxTokens})
	if err != nil {
		return "", &GenerateError{Kind: FailTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", &GenerateError{Kind: FailTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &GenerateError{Kind: FailTimeout, Err: err}
		}
		return "", &GenerateError{Kind: FailTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &GenerateError{Kind: FailStatus, Status: resp.StatusCode}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if isTimeout(err) {
			return "", &GenerateError{Kind: FailTimeout, Err: err}
		}
		return "", &GenerateError{Kind: FailEmpty, Err: err}
	}
	if out.Text == "" {
		return "", &GenerateError{Kind: FailEmpty}
	}
	return out.Text, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
