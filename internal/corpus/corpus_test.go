package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() (Corpus, Index) {
	var c Corpus
	c.Append(
		Fragment{Text: "Название программы: Искусственный интеллект", Program: ProgramAI},
		Fragment{Text: "Стоимость обучения <599 000> рублей & скидки", Program: ProgramAI},
		Fragment{Text: "AI Product: карьера продакт-менеджера", Program: ProgramAIProduct},
	)

	idx := Index{
		{0.1, -0.25, 0.333333},
		{1e-7, 0.5, -0.75},
		{0.9, 0.0, 0.125},
	}

	return c, idx
}

func TestParseProgram(t *testing.T) {
	tests := []struct {
		input string
		want  Program
		ok    bool
	}{
		{"ai", ProgramAI, true},
		{"  AI_Product ", ProgramAIProduct, true},
		{"ai product", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseProgram(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgramValid(t *testing.T) {
	assert.True(t, ProgramAI.Valid())
	assert.True(t, ProgramAIProduct.Valid())
	assert.False(t, Program("AI").Valid())
	assert.False(t, Program("design").Valid())
}

func TestValidate(t *testing.T) {
	c, idx := sampleSnapshot()
	require.NoError(t, Validate(c, idx))

	t.Run("fewer vectors than fragments", func(t *testing.T) {
		err := Validate(c, idx[:2])
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("meta shorter than texts", func(t *testing.T) {
		broken := Corpus{Texts: c.Texts, Meta: c.Meta[:1]}
		err := Validate(broken, idx)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("ragged rows", func(t *testing.T) {
		ragged := Index{{1, 2, 3}, {1, 2}, {1, 2, 3}}
		err := Validate(c, ragged)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("unknown tag", func(t *testing.T) {
		broken := Corpus{Texts: c.Texts, Meta: []string{"ai", "design", "ai"}}
		err := Validate(broken, idx)
		assert.ErrorIs(t, err, ErrUnknownProgram)
	})

	t.Run("empty pair", func(t *testing.T) {
		assert.NoError(t, Validate(Corpus{}, nil))
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	files := FilesIn(t.TempDir())
	c, idx := sampleSnapshot()

	require.NoError(t, files.Save(c, idx))

	snap, err := files.Load()
	require.NoError(t, err)

	assert.Equal(t, c.Texts, snap.Corpus.Texts)
	assert.Equal(t, c.Meta, snap.Corpus.Meta)
	require.Len(t, snap.Index, len(idx))

	for i := range idx {
		assert.InDeltaSlice(t, idx[i], snap.Index[i], 1e-9)
	}

	assert.Equal(t, len(snap.Corpus.Texts), len(snap.Corpus.Meta))
	assert.Equal(t, len(snap.Corpus.Texts), len(snap.Index))
}

func TestSaveKeepsNonASCIIReadable(t *testing.T) {
	files := FilesIn(t.TempDir())
	c, idx := sampleSnapshot()
	require.NoError(t, files.Save(c, idx))

	raw, err := os.ReadFile(files.CorpusPath)
	require.NoError(t, err)

	assert.Contains(t, string(raw), "Искусственный интеллект")
	assert.Contains(t, string(raw), "<599 000>")
	assert.Contains(t, string(raw), `"texts"`)
	assert.Contains(t, string(raw), `"meta"`)
}

func TestSaveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	files := FilesIn(dir)
	c, idx := sampleSnapshot()

	require.NoError(t, files.Save(c, idx))

	err := files.Save(c, idx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactsExist))

	// a lone embeddings file also blocks the write
	other := FilesIn(t.TempDir())
	require.NoError(t, os.WriteFile(other.EmbeddingsPath, []byte("[]"), 0o600))

	err = other.Save(c, idx)
	assert.ErrorIs(t, err, ErrArtifactsExist)

	_, statErr := os.Stat(other.CorpusPath)
	assert.True(t, os.IsNotExist(statErr), "corpus must not be written next to a foreign index")
}

func TestSaveRejectsMisalignedPair(t *testing.T) {
	files := FilesIn(t.TempDir())
	c, idx := sampleSnapshot()

	err := files.Save(c, idx[:1])
	assert.ErrorIs(t, err, ErrLengthMismatch)

	exists, err := files.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoadMissingFiles(t *testing.T) {
	files := FilesIn(filepath.Join(t.TempDir(), "nowhere"))

	_, err := files.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDetectsMismatch(t *testing.T) {
	dir := t.TempDir()
	files := FilesIn(dir)

	require.NoError(t, os.WriteFile(files.CorpusPath, []byte(`{"texts":["a","b"],"meta":["ai","ai"]}`), 0o600))
	require.NoError(t, os.WriteFile(files.EmbeddingsPath, []byte(`[[1,0]]`), 0o600))

	_, err := files.Load()
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestCountByProgram(t *testing.T) {
	c, _ := sampleSnapshot()
	counts := c.CountByProgram()

	assert.Equal(t, 2, counts[ProgramAI])
	assert.Equal(t, 1, counts[ProgramAIProduct])
}
