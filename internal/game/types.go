// internal/game/types.go
//
// Core type definitions for the hangman round engine.
// Defines:
//   - Outcome: result of a single guess (correct/incorrect/already_guessed).
//   - Round: state for a single in-progress or finished round.
//   - Snapshot: the read-only view handed to presentation layers.

package game

import "errors"

// Outcome classifies what a single guess did to the round.
// Possible values:
//   - "correct":         letter occurs in the secret; positions revealed.
//   - "incorrect":       letter does not occur; one life spent.
//   - "already_guessed": letter was attempted before; nothing changed.
type Outcome string

const (
	OutcomeCorrect        Outcome = "correct"
	OutcomeIncorrect      Outcome = "incorrect"
	OutcomeAlreadyGuessed Outcome = "already_guessed"
)

// Round status strings reported by Status and Snapshot.
const (
	StatusPlaying = "playing"
	StatusWon     = "won"
	StatusLost    = "lost"
)

// Sentinel errors returned by Round operations. Every failed precondition is
// checked before any mutation, so a Round is unchanged after any of these.
var (
	ErrRoundOver       = errors.New("round already over")
	ErrInvalidInput    = errors.New("guess must be a single letter")
	ErrHintUnavailable = errors.New("not enough lives for a hint")
	ErrNothingToReveal = errors.New("no letters left to reveal")
	ErrInvalidSecret   = errors.New("secret must be a non-empty alphabetic word")
)

// Round holds the state of one hangman round. All mutation goes through
// Guess and UseHint; callers read state via Snapshot, Mask, and Status.
type Round struct {
	ID        string // unique round identifier (random hex string)
	Secret    string // the solution word (always uppercase)
	MaxLives  int    // starting life count
	Lives     int    // lives remaining, clamped at zero
	HintCost  int    // lives spent per hint
	HintsUsed int    // informational counter

	guessed  map[byte]struct{} // letters of the secret revealed so far
	used     map[byte]struct{} // every letter attempted or preseeded
	finished bool
	won      bool
}

// Result reports the effect of a single Guess call, including the
// post-operation status so callers can detect a win/loss transition.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Letter  string  `json:"letter"`
	Status  string  `json:"status"`
}

// Reveal reports the effect of a UseHint call.
type Reveal struct {
	Letter string `json:"letter"`
	Status string `json:"status"`
}

// Snapshot is everything a presentation layer needs to render the round.
// Secret is only populated once the round is terminal (reveal on loss).
type Snapshot struct {
	ID          string   `json:"id"`
	Mask        string   `json:"mask"`
	UsedLetters []string `json:"usedLetters"`
	Lives       int      `json:"lives"`
	MaxLives    int      `json:"maxLives"`
	HintsUsed   int      `json:"hintsUsed"`
	Status      string   `json:"status"`
	Secret      string   `json:"secret,omitempty"`
}
