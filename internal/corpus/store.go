package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// returned when a persisted corpus or index is already on disk
var ErrArtifactsExist = errors.New("corpus artifacts already exist")

// locations of the persisted corpus and embedding index
type Files struct {
	CorpusPath     string
	EmbeddingsPath string
}

// returns the default artifact paths inside dir
func FilesIn(dir string) Files {
	return Files{
		CorpusPath:     filepath.Join(dir, DefaultCorpusFile),
		EmbeddingsPath: filepath.Join(dir, DefaultEmbeddingsFile),
	}
}

// reports whether either artifact is present
func (f Files) Exists() (bool, error) {
	for _, path := range []string{f.CorpusPath, f.EmbeddingsPath} {
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	return false, nil
}

// writes corpus and index. refuses to replace existing artifacts.
func (f Files) Save(c Corpus, idx Index) error {
	if err := Validate(c, idx); err != nil {
		return fmt.Errorf("refusing to save invalid corpus: %w", err)
	}

	exists, err := f.Exists()
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: delete %s and %s to rebuild", ErrArtifactsExist, f.CorpusPath, f.EmbeddingsPath)
	}

	corpusData, err := encodeJSON(c, true)
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}

	// nil index encodes as null, keep it an empty array
	if idx == nil {
		idx = Index{}
	}

	indexData, err := encodeJSON(idx, false)
	if err != nil {
		return fmt.Errorf("failed to encode embeddings: %w", err)
	}

	if err := writeFileAtomic(f.EmbeddingsPath, indexData); err != nil {
		return err
	}

	if err := writeFileAtomic(f.CorpusPath, corpusData); err != nil {
		os.Remove(f.EmbeddingsPath) //nolint:errcheck,gosec // best-effort cleanup of a half pair
		return err
	}

	return nil
}

// reads and validates both artifacts
func (f Files) Load() (*Snapshot, error) {
	var c Corpus
	if err := readJSON(f.CorpusPath, &c); err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	var idx Index
	if err := readJSON(f.EmbeddingsPath, &idx); err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}

	if err := Validate(c, idx); err != nil {
		return nil, fmt.Errorf("corpus %s does not match embeddings %s: %w", f.CorpusPath, f.EmbeddingsPath, err)
	}

	return &Snapshot{Corpus: c, Index: idx}, nil
}

func encodeJSON(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if indent {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // error path cleanup
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	return nil
}
