package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// talks to the chat REST API and remembers the conversation it is in
type ChatClient struct {
	endpoint   string
	httpClient *http.Client

	mu             sync.Mutex
	conversationID string
}

// creates a new chat REST client for a server base URL
func NewChatClient(endpoint string) *ChatClient {
	return &ChatClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// returns the conversation assigned by the server, empty before the first reply
func (c *ChatClient) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conversationID
}

// sends one user message
func (c *ChatClient) Send(ctx context.Context, text string) (*Reply, error) {
	return c.post(ctx, "/api/v1/chat", chatRequest{
		Message:        text,
		ConversationID: c.ConversationID(),
	})
}

// starts the conversation over and returns the greeting
func (c *ChatClient) Reset(ctx context.Context) (*Reply, error) {
	return c.post(ctx, "/api/v1/chat/reset", chatRequest{
		ConversationID: c.ConversationID(),
	})
}

// lists the programs the server has fragments for
func (c *ChatClient) Programs(ctx context.Context) ([]ProgramInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/v1/programs", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result programsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Programs, nil
}

func (c *ChatClient) post(ctx context.Context, path string, payload chatRequest) (*Reply, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var reply Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if reply.ConversationID != "" {
		c.mu.Lock()
		c.conversationID = reply.ConversationID
		c.mu.Unlock()
	}

	return &reply, nil
}

func (c *ChatClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
		}

		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// returns a tea.Cmd that sends a message
func (c *ChatClient) SendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		reply, err := c.Send(ctx, text)
		if err != nil {
			return ChatErrorMsg{err: err}
		}

		return ReplyMsg{reply: *reply}
	}
}

// returns a tea.Cmd that resets the conversation
func (c *ChatClient) ResetCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		reply, err := c.Reset(ctx)
		if err != nil {
			return ChatErrorMsg{err: err}
		}

		return ReplyMsg{reply: *reply}
	}
}

// returns a tea.Cmd that loads the program list
func (c *ChatClient) ProgramsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		programs, err := c.Programs(ctx)
		if err != nil {
			return ErrorMsg{err: err}
		}

		return ProgramsMsg{programs: programs}
	}
}
