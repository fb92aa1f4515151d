// internal/words/words.go
//
// Provides the target vocabulary for the game engine.
//
// Responsibilities:
//   - Load the word list from a CSV file or fall back to the embedded default.
//   - Normalize entries to uppercase and drop anything that is not all letters.
//   - Supply a uniformly random target word.
//
// File format:
//   One record per line, target word in the second column (code,name), as in
//   the embedded assets/countries.csv. Single-column files are also accepted.
//
// Environment variables (read by config, passed to Load):
//   WORDS_FILE=/path/to/words.csv

package words

import (
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"unicode"

	"github.com/robalobadob/hangman/assets"
)

// ErrEmpty is returned when no usable word was loaded.
var ErrEmpty = errors.New("words: word list is empty")

// List is an immutable vocabulary of uppercase target words.
type List struct {
	words []string
}

// Load reads the vocabulary from path, or from the embedded default when
// path is empty.
func Load(path string) (*List, error) {
	var r io.ReadCloser
	if path == "" {
		f, err := assets.Countries()
		if err != nil {
			return nil, fmt.Errorf("open embedded words: %w", err)
		}
		r = f
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		r = f
	}
	defer r.Close()
	return Parse(r)
}

// Parse builds a List from CSV records.
func Parse(r io.Reader) (*List, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var out []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read words: %w", err)
		}
		w := normalize(column(rec))
		if w != "" {
			out = append(out, w)
		}
	}
	return New(out...)
}

// New builds a List from words directly. Invalid entries are skipped.
func New(ws ...string) (*List, error) {
	var out []string
	for _, w := range ws {
		if n := normalize(w); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return &List{words: out}, nil
}

// Random returns a cryptographically random word from the list.
func (l *List) Random() string {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.words))))
	if err != nil {
		return l.words[0]
	}
	return l.words[nBig.Int64()]
}

// Len reports the number of loaded words.
func (l *List) Len() int { return len(l.words) }

// Contains reports whether w is in the list (case-insensitive).
func (l *List) Contains(w string) bool {
	w = strings.ToUpper(w)
	for _, x := range l.words {
		if x == w {
			return true
		}
	}
	return false
}

// column picks the word column of a record.
func column(rec []string) string {
	switch len(rec) {
	case 0:
		return ""
	case 1:
		return rec[0]
	default:
		return rec[1]
	}
}

// normalize uppercases and trims w, returning "" unless it is all letters.
func normalize(w string) string {
	w = strings.ToUpper(strings.TrimSpace(w))
	if w == "" {
		return ""
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return ""
		}
	}
	return w
}
