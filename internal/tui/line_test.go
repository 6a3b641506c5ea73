package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent   []string
	resets int
	err    error
}

func (f *fakeSender) Send(_ context.Context, text string) (*Reply, error) {
	f.sent = append(f.sent, text)

	if text == "boom" {
		return nil, errors.New("server_error: failed")
	}

	return &Reply{Messages: []string{"ответ: " + text}, State: "active"}, nil
}

func (f *fakeSender) Reset(context.Context) (*Reply, error) {
	f.resets++

	if f.err != nil {
		return nil, f.err
	}

	return &Reply{
		Messages: []string{"Здравствуйте!"},
		Options:  []string{"ai", "ai_product"},
		State:    stateAwaitingProgram,
	}, nil
}

func TestRunLine(t *testing.T) {
	sender := &fakeSender{}
	in := strings.NewReader("ai\n\n  boom \nчто изучают?\n/exit\nне отправится\n")
	var out bytes.Buffer

	require.NoError(t, RunLine(context.Background(), in, &out, sender))

	assert.Equal(t, 1, sender.resets)
	assert.Equal(t, []string{"ai", "boom", "что изучают?"}, sender.sent)

	text := out.String()
	assert.Contains(t, text, "Здравствуйте!")
	assert.Contains(t, text, "  * ai_product\n")
	assert.Contains(t, text, "ответ: ai")
	assert.Contains(t, text, "Ошибка: server_error: failed")
	assert.Contains(t, text, "ответ: что изучают?")
	assert.NotContains(t, text, "не отправится")
}

func TestRunLineEOF(t *testing.T) {
	sender := &fakeSender{}
	var out bytes.Buffer

	require.NoError(t, RunLine(context.Background(), strings.NewReader("ai"), &out, sender))
	assert.Equal(t, []string{"ai"}, sender.sent)
}

func TestRunLineResetFails(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	var out bytes.Buffer

	err := RunLine(context.Background(), strings.NewReader(""), &out, sender)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start conversation")
	assert.Empty(t, sender.sent)
}
