package corpus

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLengthMismatch    = errors.New("corpus and index length mismatch")
	ErrDimensionMismatch = errors.New("index rows have inconsistent dimensions")
	ErrUnknownProgram    = errors.New("unknown program")
)

// returns the fixed set of programs in menu order
func KnownPrograms() []Program {
	return []Program{ProgramAI, ProgramAIProduct}
}

// returns the program names as plain strings
func ProgramNames() []string {
	programs := KnownPrograms()
	names := make([]string, len(programs))

	for i, p := range programs {
		names[i] = string(p)
	}

	return names
}

// matches s against the known programs, ignoring case and surrounding whitespace
func ParseProgram(s string) (Program, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	for _, p := range KnownPrograms() {
		if string(p) == normalized {
			return p, true
		}
	}

	return "", false
}

// reports whether p is exactly one of the known programs
func (p Program) Valid() bool {
	for _, known := range KnownPrograms() {
		if p == known {
			return true
		}
	}

	return false
}

func (p Program) String() string {
	return string(p)
}

// appends fragments keeping texts and tags aligned
func (c *Corpus) Append(fragments ...Fragment) {
	for _, f := range fragments {
		c.Texts = append(c.Texts, f.Text)
		c.Meta = append(c.Meta, string(f.Program))
	}
}

func (c Corpus) Len() int {
	return len(c.Texts)
}

// returns the fragment at position i
func (c Corpus) Fragment(i int) (Fragment, bool) {
	if i < 0 || i >= len(c.Texts) || i >= len(c.Meta) {
		return Fragment{}, false
	}

	return Fragment{Text: c.Texts[i], Program: Program(c.Meta[i])}, true
}

// counts fragments per program tag
func (c Corpus) CountByProgram() map[Program]int {
	counts := make(map[Program]int)

	for _, tag := range c.Meta {
		counts[Program(tag)]++
	}

	return counts
}

// returns the embedding dimension, 0 for an empty index
func (idx Index) Dimensions() int {
	if len(idx) == 0 {
		return 0
	}

	return len(idx[0])
}

// checks the positional alignment between corpus and index
func Validate(c Corpus, idx Index) error {
	if len(c.Texts) != len(c.Meta) {
		return fmt.Errorf("%w: %d texts, %d tags", ErrLengthMismatch, len(c.Texts), len(c.Meta))
	}

	if len(c.Texts) != len(idx) {
		return fmt.Errorf("%w: %d fragments, %d vectors", ErrLengthMismatch, len(c.Texts), len(idx))
	}

	dim := idx.Dimensions()
	for i, row := range idx {
		if len(row) != dim {
			return fmt.Errorf("%w: row %d has %d, expected %d", ErrDimensionMismatch, i, len(row), dim)
		}
	}

	for i, tag := range c.Meta {
		if !Program(tag).Valid() {
			return fmt.Errorf("%w %q at position %d", ErrUnknownProgram, tag, i)
		}
	}

	return nil
}
