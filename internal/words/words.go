// internal/words/words.go
//
// Word bank management for the hangman engine.
//
// Responsibilities:
//   - Parse categorized word banks from an environment-provided file or the
//     embedded default ("category: word word ..." lines).
//   - Validate the bank shape: known categories, non-empty alphabetic words.
//   - Select a secret word uniformly at random from one category or from
//     all categories pooled (CategoryAny).
//
// Initialization behavior (Init):
//   1. If WORD_BANK_FILE is set, load the bank from that file.
//   2. Otherwise fall back to the embedded default in the assets package.
//
// Constraints:
//   • Words are normalized to uppercase before they reach the engine.
//   • Category names are normalized to lowercase.
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/seanl/neo-hangman/assets"
)

// CategoryAny pools every category together for selection.
const CategoryAny = "any"

var (
	// ErrUnknownCategory is returned for a category not present in the bank.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrEmptyBank is returned when the resolved candidate set has no words.
	// Defensive: a correctly loaded bank never hits this.
	ErrEmptyBank = errors.New("no words available")
)

// Bank maps lowercase category names to their uppercase candidate words.
// A Bank is immutable once loaded.
type Bank map[string][]string

// Picker returns a uniform index in [0, n). Production code uses
// cryptoPick; tests substitute a fixed function for determinism.
type Picker func(n int) int

var (
	initOnce    sync.Once
	defaultBank Bank
	initialErr  error
)

// Init loads the default bank exactly once: WORD_BANK_FILE if set,
// otherwise the embedded bank.
func Init() (Bank, error) {
	initOnce.Do(func() {
		if path := os.Getenv("WORD_BANK_FILE"); path != "" {
			defaultBank, initialErr = FromFile(path)
			return
		}
		lines, err := assets.BankLines()
		if err != nil {
			initialErr = err
			return
		}
		defaultBank, initialErr = fromLines(lines)
	})
	return defaultBank, initialErr
}

// FromFile loads a bank from a "category: word word ..." file.
func FromFile(path string) (Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a bank from r, one category per line. Comment lines ('#')
// and blank lines are skipped. Malformed lines and non-alphabetic words
// are errors rather than silently dropped, so a broken bank file fails
// loudly at startup.
func Parse(r io.Reader) (Bank, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		lines = append(lines, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return fromLines(lines)
}

// fromLines builds and validates a Bank from pre-trimmed content lines.
func fromLines(lines []string) (Bank, error) {
	b := make(Bank)
	for _, line := range lines {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("word bank: malformed line %q", line)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == CategoryAny {
			return nil, fmt.Errorf("word bank: invalid category name %q", name)
		}
		var ws []string
		for _, w := range strings.Fields(rest) {
			w = strings.ToUpper(w)
			if !isAlpha(w) {
				return nil, fmt.Errorf("word bank: invalid word %q in category %s", w, name)
			}
			ws = append(ws, w)
		}
		if len(ws) == 0 {
			return nil, fmt.Errorf("word bank: category %s has no words", name)
		}
		b[name] = append(b[name], ws...)
	}
	if len(b) == 0 {
		return nil, errors.New("word bank: no categories")
	}
	return b, nil
}

// Categories returns the bank's category names, sorted.
func (b Bank) Categories() []string {
	out := make([]string, 0, len(b))
	for name := range b {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Words resolves a category (or CategoryAny) to its candidate list.
// The pooled list for CategoryAny is built in sorted-category order so
// selection indices are reproducible.
func (b Bank) Words(category string) ([]string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == CategoryAny || category == "" {
		var all []string
		for _, name := range b.Categories() {
			all = append(all, b[name]...)
		}
		if len(all) == 0 {
			return nil, ErrEmptyBank
		}
		return all, nil
	}
	ws, ok := b[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if len(ws) == 0 {
		return nil, ErrEmptyBank
	}
	return ws, nil
}

// Pick selects one word uniformly at random from the category (or the
// whole bank for CategoryAny). A nil picker uses crypto/rand entropy.
// The returned word is uppercase, ready for the round engine.
func (b Bank) Pick(category string, pick Picker) (string, error) {
	ws, err := b.Words(category)
	if err != nil {
		return "", err
	}
	if pick == nil {
		pick = cryptoPick
	}
	i := pick(len(ws))
	if i < 0 || i >= len(ws) {
		return "", fmt.Errorf("picker returned out-of-range index %d", i)
	}
	return ws[i], nil
}

// Stats returns counts of loaded data: (categories, words).
func (b Bank) Stats() (categories int, words int) {
	for _, ws := range b {
		words += len(ws)
	}
	return len(b), words
}

// cryptoPick draws a uniform index from crypto/rand.
func cryptoPick(n int) int {
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(nBig.Int64())
}

// isAlpha reports whether s is all ASCII letters A–Z.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
