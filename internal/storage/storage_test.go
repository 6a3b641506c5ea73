package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
)

// runs against a real postgres with pgvector when TEST_DATABASE_URL is set
func testClient(t *testing.T) *Client {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	client, err := NewClient(context.Background(), connString)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	require.NoError(t, client.EnsureSchema(context.Background()))

	return client
}

func TestFragmentsRoundTrip(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	var cp corpus.Corpus
	cp.Append(
		corpus.Fragment{Text: "Название программы: ИИ", Program: corpus.ProgramAI},
		corpus.Fragment{Text: "AI Product", Program: corpus.ProgramAIProduct},
	)
	idx := corpus.Index{{0.5, -0.25, 1}, {0, 1, 0.125}}

	require.NoError(t, client.ReplaceFragments(ctx, cp, idx))

	count, err := client.GetFragmentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	snap, err := client.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, cp, snap.Corpus)
	assert.Equal(t, idx, snap.Index)
}

func TestReplaceFragmentsKeepsOldCorpusOnFailure(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	var old corpus.Corpus
	old.Append(corpus.Fragment{Text: "старый корпус", Program: corpus.ProgramAI})
	require.NoError(t, client.ReplaceFragments(ctx, old, corpus.Index{{1, 0}}))

	// postgres rejects NUL in text, failing the second insert after the delete ran
	var broken corpus.Corpus
	broken.Append(
		corpus.Fragment{Text: "новый", Program: corpus.ProgramAI},
		corpus.Fragment{Text: "bad\x00text", Program: corpus.ProgramAIProduct},
	)
	require.Error(t, client.ReplaceFragments(ctx, broken, corpus.Index{{0, 1}, {1, 1}}))

	snap, err := client.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, old, snap.Corpus)
}

func TestReplaceFragmentsRejectsBadInput(t *testing.T) {
	client := NewClientFromPool(nil)

	err := client.ReplaceFragments(context.Background(),
		corpus.Corpus{Texts: []string{"a"}, Meta: []string{"ai"}},
		corpus.Index{},
	)
	assert.ErrorIs(t, err, corpus.ErrLengthMismatch)

	err = client.ReplaceFragments(context.Background(), corpus.Corpus{}, corpus.Index{})
	assert.ErrorIs(t, err, ErrNoFragments)
}
