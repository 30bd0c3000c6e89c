// internal/game/round.go
//
// Round engine for a single hangman session.
// Responsibilities:
//   - Construct rounds with a validated secret, life budget, and optional
//     preseeded letters.
//   - Validate and apply letter guesses (single alphabetic character,
//     repeats are a no-op).
//   - Reveal letters via hints at a configurable life cost.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - Secrets come from the words package; the engine never selects words.
//   - All operations are synchronous and mutate nothing on failure.
//   - randomID() is a compact hex identifier for correlating server state.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strings"
)

const (
	DefaultMaxLives = 6
	DefaultHintCost = 1
)

// Options configures round construction. Zero values fall back to the
// package defaults, so Options{} is a valid classic round.
type Options struct {
	MaxLives int
	HintCost int
	// Preseed letters are marked as used before the first guess, without
	// guess or penalty semantics: present letters start revealed, absent
	// ones are blocked from being wasted on.
	Preseed string
}

// NewRound constructs a round around secret. The secret is uppercased and
// must be non-empty and alphabetic. A preseed that already completes the
// secret yields a round that is won at construction time.
func NewRound(secret string, opts Options) (*Round, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if secret == "" || !isAlpha(secret) {
		return nil, ErrInvalidSecret
	}
	if opts.MaxLives <= 0 {
		opts.MaxLives = DefaultMaxLives
	}
	if opts.HintCost <= 0 {
		opts.HintCost = DefaultHintCost
	}

	r := &Round{
		ID:       randomID(),
		Secret:   secret,
		MaxLives: opts.MaxLives,
		Lives:    opts.MaxLives,
		HintCost: opts.HintCost,
		guessed:  make(map[byte]struct{}),
		used:     make(map[byte]struct{}),
	}

	// Preseeding happens exactly once, here. Every preseed letter counts as
	// used; only those present in the secret count as guessed.
	for i := 0; i < len(opts.Preseed); i++ {
		c := upperLetter(opts.Preseed[i])
		if c == 0 {
			continue
		}
		r.used[c] = struct{}{}
		if strings.IndexByte(secret, c) >= 0 {
			r.guessed[c] = struct{}{}
		}
	}
	r.refreshTerminal()
	return r, nil
}

// Guess applies a single-letter guess, mutating the round state.
//
// Validation rules:
//   - Round must not be finished (won or lost).
//   - Input must normalize to exactly one letter A–Z.
//
// A repeated letter returns OutcomeAlreadyGuessed and changes nothing; the
// caller must not charge the player for it.
func (r *Round) Guess(letter string) (Result, error) {
	if r.finished {
		return Result{}, ErrRoundOver
	}
	c, ok := normalizeGuess(letter)
	if !ok {
		return Result{}, ErrInvalidInput
	}
	res := Result{Letter: string(c)}

	if _, seen := r.used[c]; seen {
		res.Outcome = OutcomeAlreadyGuessed
		res.Status = r.Status()
		return res, nil
	}

	r.used[c] = struct{}{}
	if strings.IndexByte(r.Secret, c) >= 0 {
		r.guessed[c] = struct{}{}
		res.Outcome = OutcomeCorrect
	} else {
		if r.Lives > 0 {
			r.Lives--
		}
		res.Outcome = OutcomeIncorrect
	}
	r.refreshTerminal()
	res.Status = r.Status()
	return res, nil
}

// UseHint reveals the leftmost unrevealed letter of the secret for
// HintCost lives. Refused when the remaining lives do not exceed the cost,
// so a hint can never lose the round and one guess always remains.
func (r *Round) UseHint() (Reveal, error) {
	if r.finished {
		return Reveal{}, ErrRoundOver
	}
	if r.Lives <= r.HintCost {
		return Reveal{}, ErrHintUnavailable
	}
	var c byte
	for i := 0; i < len(r.Secret); i++ {
		if _, ok := r.guessed[r.Secret[i]]; !ok {
			c = r.Secret[i]
			break
		}
	}
	if c == 0 {
		return Reveal{}, ErrNothingToReveal
	}

	r.guessed[c] = struct{}{}
	r.used[c] = struct{}{}
	r.Lives -= r.HintCost
	if r.Lives < 0 {
		r.Lives = 0
	}
	r.HintsUsed++
	r.refreshTerminal()
	return Reveal{Letter: string(c), Status: r.Status()}, nil
}

// Mask renders one character per secret letter: the letter if revealed,
// '_' otherwise. Once the round is terminal the full secret is shown
// (reveal-on-loss product behavior). Pure query.
func (r *Round) Mask() string {
	if r.finished {
		return r.Secret
	}
	b := make([]byte, len(r.Secret))
	for i := 0; i < len(r.Secret); i++ {
		if _, ok := r.guessed[r.Secret[i]]; ok {
			b[i] = r.Secret[i]
		} else {
			b[i] = '_'
		}
	}
	return string(b)
}

// Status reports the coarse round state: "playing", "won", or "lost".
func (r *Round) Status() string {
	if r.finished {
		if r.won {
			return StatusWon
		}
		return StatusLost
	}
	return StatusPlaying
}

// Finished reports whether the round reached a terminal state.
func (r *Round) Finished() bool { return r.finished }

// Won reports whether the round finished with every letter revealed.
func (r *Round) Won() bool { return r.won }

// WrongGuesses derives the number of lives spent so far.
func (r *Round) WrongGuesses() int { return r.MaxLives - r.Lives }

// Snapshot returns the rendering view of the round. Used letters are
// sorted so output is stable for clients and tests.
func (r *Round) Snapshot() Snapshot {
	used := make([]string, 0, len(r.used))
	for c := range r.used {
		used = append(used, string(c))
	}
	sort.Strings(used)

	s := Snapshot{
		ID:          r.ID,
		Mask:        r.Mask(),
		UsedLetters: used,
		Lives:       r.Lives,
		MaxLives:    r.MaxLives,
		HintsUsed:   r.HintsUsed,
		Status:      r.Status(),
	}
	if r.finished {
		s.Secret = r.Secret
	}
	return s
}

// refreshTerminal recomputes the won/lost flags after a mutation.
// Won and lost are mutually exclusive: a round that reveals its last
// letter is won even if lives hit zero on a prior guess path.
func (r *Round) refreshTerminal() {
	if r.allRevealed() {
		r.finished, r.won = true, true
		return
	}
	if r.Lives == 0 {
		r.finished = true
	}
}

// allRevealed reports whether every distinct secret letter is guessed.
func (r *Round) allRevealed() bool {
	for i := 0; i < len(r.Secret); i++ {
		if _, ok := r.guessed[r.Secret[i]]; !ok {
			return false
		}
	}
	return true
}

// normalizeGuess maps raw input to a single uppercase letter.
// Returns ok=false for anything that is not exactly one letter.
func normalizeGuess(s string) (byte, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return 0, false
	}
	c := upperLetter(s[0])
	if c == 0 {
		return 0, false
	}
	return c, true
}

// upperLetter uppercases an ASCII letter; returns 0 for non-letters.
func upperLetter(c byte) byte {
	switch {
	case c >= 'A' && c <= 'Z':
		return c
	case c >= 'a' && c <= 'z':
		return c - 'a' + 'A'
	default:
		return 0
	}
}

// isAlpha checks that a string consists only of letters A–Z.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if upperLetter(s[i]) == 0 {
			return false
		}
	}
	return true
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
