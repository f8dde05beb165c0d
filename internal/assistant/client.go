// Package assistant is the knowledge-base AI collaborator: one bounded
// question/answer round trip against the equipment's OpenAI assistant, which
// carries the equipment manuals in its vector store (File Search).
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Failure classes the router matches on explicitly instead of a catch-all.
var (
	ErrRateLimited = errors.New("assistant: rate limited")
	ErrNoReply     = errors.New("assistant: run finished without an assistant reply")
)

const (
	// Upper bound for the whole thread/run round trip. One attempt per chat
	// turn; the caller falls back to the offline table instead of retrying.
	runTimeout   = 30 * time.Second
	pollInterval = time.Second
)

type Client struct {
	api *openai.Client
}

// New returns nil when apiKey is blank. Callers treat a nil client as "AI path
// not configured" — a one-time startup decision, not probed per call.
func New(apiKey string) *Client {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &Client{api: openai.NewClient(apiKey)}
}

// Perguntar sends one question to the given assistant and returns the first
// assistant-authored message text. The run is polled until it reaches a
// terminal status, bounded by runTimeout.
func (c *Client) Perguntar(ctx context.Context, assistantID, pergunta string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", classify("create thread", err)
	}

	if _, err := c.api.CreateMessage(ctx, thread.ID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: pergunta,
	}); err != nil {
		return "", classify("create message", err)
	}

	run, err := c.api.CreateRun(ctx, thread.ID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return "", classify("create run", err)
	}

	for run.Status == openai.RunStatusQueued || run.Status == openai.RunStatusInProgress {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("assistant: run wait: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
		run, err = c.api.RetrieveRun(ctx, thread.ID, run.ID)
		if err != nil {
			return "", classify("retrieve run", err)
		}
	}
	if run.Status != openai.RunStatusCompleted {
		return "", fmt.Errorf("assistant: run ended with status %s", run.Status)
	}

	msgs, err := c.api.ListMessage(ctx, thread.ID, nil, nil, nil, nil, nil)
	if err != nil {
		return "", classify("list messages", err)
	}
	for _, m := range msgs.Messages {
		if m.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, part := range m.Content {
			if part.Text != nil && part.Text.Value != "" {
				return part.Text.Value, nil
			}
		}
	}
	return "", ErrNoReply
}

func classify(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", op, ErrRateLimited)
	}
	return fmt.Errorf("assistant: %s: %w", op, err)
}
