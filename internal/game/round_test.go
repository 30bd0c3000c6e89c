package game

import (
	"errors"
	"testing"
)

func mustRound(t *testing.T, secret string, opts Options) *Round {
	t.Helper()
	r, err := NewRound(secret, opts)
	if err != nil {
		t.Fatalf("NewRound(%q): %v", secret, err)
	}
	return r
}

func mustGuess(t *testing.T, r *Round, letter string) Result {
	t.Helper()
	res, err := r.Guess(letter)
	if err != nil {
		t.Fatalf("Guess(%q): %v", letter, err)
	}
	return res
}

func TestNewRoundValidation(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		wantOK bool
	}{
		{"Uppercase word", "CAT", true},
		{"Lowercase normalized", "cat", true},
		{"Surrounding whitespace", "  dog  ", true},
		{"Empty", "", false},
		{"Whitespace only", "   ", false},
		{"Digits", "C4T", false},
		{"Punctuation", "CAT!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRound(tt.secret, Options{})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if r.Secret != "CAT" && r.Secret != "DOG" {
					t.Errorf("secret not normalized: %q", r.Secret)
				}
				if r.Lives != DefaultMaxLives || r.MaxLives != DefaultMaxLives {
					t.Errorf("expected default lives %d, got %d/%d", DefaultMaxLives, r.Lives, r.MaxLives)
				}
			} else if !errors.Is(err, ErrInvalidSecret) {
				t.Errorf("expected ErrInvalidSecret, got %v", err)
			}
		})
	}
}

func TestWinningScenario(t *testing.T) {
	// secret CAT, 6 lives, no preseeding
	r := mustRound(t, "CAT", Options{MaxLives: 6})

	if got := r.Mask(); got != "___" {
		t.Fatalf("initial mask = %q, want ___", got)
	}

	res := mustGuess(t, r, "C")
	if res.Outcome != OutcomeCorrect || r.Mask() != "C__" || r.Lives != 6 {
		t.Errorf("after C: outcome=%v mask=%q lives=%d", res.Outcome, r.Mask(), r.Lives)
	}

	res = mustGuess(t, r, "Z")
	if res.Outcome != OutcomeIncorrect || r.Lives != 5 {
		t.Errorf("after Z: outcome=%v lives=%d", res.Outcome, r.Lives)
	}

	res = mustGuess(t, r, "A")
	if res.Outcome != OutcomeCorrect || r.Mask() != "CA_" {
		t.Errorf("after A: outcome=%v mask=%q", res.Outcome, r.Mask())
	}

	res = mustGuess(t, r, "T")
	if res.Outcome != OutcomeCorrect || res.Status != StatusWon {
		t.Errorf("after T: outcome=%v status=%v", res.Outcome, res.Status)
	}
	if r.Status() != StatusWon || !r.Won() || r.Mask() != "CAT" {
		t.Errorf("terminal state: status=%v won=%v mask=%q", r.Status(), r.Won(), r.Mask())
	}
}

func TestWinOrderIrrelevant(t *testing.T) {
	orders := [][]string{
		{"C", "A", "T"},
		{"T", "A", "C"},
		{"A", "T", "C"},
	}
	for _, order := range orders {
		r := mustRound(t, "CAT", Options{})
		for _, l := range order {
			mustGuess(t, r, l)
		}
		if r.Status() != StatusWon {
			t.Errorf("order %v: status = %v, want won", order, r.Status())
		}
		if r.Mask() != "CAT" {
			t.Errorf("order %v: mask = %q, want CAT", order, r.Mask())
		}
	}
}

func TestLosingScenario(t *testing.T) {
	// secret DOG, a single life
	r := mustRound(t, "DOG", Options{MaxLives: 1})

	res := mustGuess(t, r, "X")
	if res.Outcome != OutcomeIncorrect || res.Status != StatusLost || r.Lives != 0 {
		t.Fatalf("after X: outcome=%v status=%v lives=%d", res.Outcome, res.Status, r.Lives)
	}

	// Mask reveals the full secret on loss.
	if got := r.Mask(); got != "DOG" {
		t.Errorf("mask after loss = %q, want DOG", got)
	}

	// Terminal round rejects everything; ErrRoundOver wins over
	// ErrHintUnavailable even at zero lives.
	if _, err := r.Guess("D"); !errors.Is(err, ErrRoundOver) {
		t.Errorf("Guess after loss: %v, want ErrRoundOver", err)
	}
	if _, err := r.UseHint(); !errors.Is(err, ErrRoundOver) {
		t.Errorf("UseHint after loss: %v, want ErrRoundOver", err)
	}
	if r.Lives != 0 || r.HintsUsed != 0 {
		t.Errorf("terminal round mutated: lives=%d hints=%d", r.Lives, r.HintsUsed)
	}
}

func TestRepeatGuessesAreFree(t *testing.T) {
	r := mustRound(t, "CAT", Options{MaxLives: 6})

	mustGuess(t, r, "Z")
	if r.Lives != 5 {
		t.Fatalf("lives after first Z = %d, want 5", r.Lives)
	}
	for i := 0; i < 3; i++ {
		res := mustGuess(t, r, "Z")
		if res.Outcome != OutcomeAlreadyGuessed {
			t.Errorf("repeat %d: outcome = %v, want already_guessed", i, res.Outcome)
		}
		if r.Lives != 5 {
			t.Errorf("repeat %d: lives = %d, want 5", i, r.Lives)
		}
	}

	// Correct letters are idempotent too.
	mustGuess(t, r, "C")
	if res := mustGuess(t, r, "c"); res.Outcome != OutcomeAlreadyGuessed {
		t.Errorf("repeat of correct letter: outcome = %v", res.Outcome)
	}
}

func TestLivesMonotonicNonNegative(t *testing.T) {
	r := mustRound(t, "A", Options{MaxLives: 3})
	prev := r.Lives
	for _, l := range []string{"B", "C", "D"} {
		mustGuess(t, r, l)
		if r.Lives > prev {
			t.Errorf("lives increased: %d -> %d", prev, r.Lives)
		}
		if r.Lives < 0 {
			t.Errorf("lives went negative: %d", r.Lives)
		}
		prev = r.Lives
	}
	if r.Status() != StatusLost {
		t.Errorf("status = %v, want lost", r.Status())
	}
}

func TestInvalidInput(t *testing.T) {
	r := mustRound(t, "CAT", Options{})
	for _, in := range []string{"", " ", "AB", "1", "?", "C A"} {
		t.Run("input "+in, func(t *testing.T) {
			if _, err := r.Guess(in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Guess(%q): %v, want ErrInvalidInput", in, err)
			}
		})
	}
	if r.Lives != DefaultMaxLives || len(r.Snapshot().UsedLetters) != 0 {
		t.Errorf("failed guesses mutated state: %+v", r.Snapshot())
	}
}

func TestCaseInsensitiveGuesses(t *testing.T) {
	r := mustRound(t, "CAT", Options{})
	if res := mustGuess(t, r, "c"); res.Outcome != OutcomeCorrect || res.Letter != "C" {
		t.Errorf("lowercase guess: outcome=%v letter=%q", res.Outcome, res.Letter)
	}
	if r.Mask() != "C__" {
		t.Errorf("mask = %q, want C__", r.Mask())
	}
}

func TestHintRevealsLeftmostUnrevealed(t *testing.T) {
	r := mustRound(t, "BANANA", Options{MaxLives: 6})
	mustGuess(t, r, "A")

	rev, err := r.UseHint()
	if err != nil {
		t.Fatalf("UseHint: %v", err)
	}
	if rev.Letter != "B" {
		t.Errorf("first hint = %q, want B (leftmost unrevealed)", rev.Letter)
	}
	if r.Lives != 5 || r.HintsUsed != 1 {
		t.Errorf("after hint: lives=%d hints=%d", r.Lives, r.HintsUsed)
	}
	if r.Mask() != "BA_A_A" {
		t.Errorf("mask = %q, want BA_A_A", r.Mask())
	}

	// Next hint reveals N and completes the word.
	rev, err = r.UseHint()
	if err != nil {
		t.Fatalf("second UseHint: %v", err)
	}
	if rev.Letter != "N" || rev.Status != StatusWon {
		t.Errorf("second hint: letter=%q status=%v", rev.Letter, rev.Status)
	}
}

func TestHintNeverRepeatsRevealedLetters(t *testing.T) {
	r := mustRound(t, "ABCDE", Options{MaxLives: 10})
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		rev, err := r.UseHint()
		if err != nil {
			t.Fatalf("hint %d: %v", i, err)
		}
		if seen[rev.Letter] {
			t.Errorf("hint %d revealed %q twice", i, rev.Letter)
		}
		seen[rev.Letter] = true
	}
}

func TestHintUnavailableAtLowLives(t *testing.T) {
	r := mustRound(t, "CAT", Options{MaxLives: 2})
	mustGuess(t, r, "Z") // lives -> 1

	if _, err := r.UseHint(); !errors.Is(err, ErrHintUnavailable) {
		t.Fatalf("UseHint at 1 life: %v, want ErrHintUnavailable", err)
	}
	if r.Lives != 1 || r.HintsUsed != 0 {
		t.Errorf("refused hint mutated state: lives=%d hints=%d", r.Lives, r.HintsUsed)
	}
}

func TestHintCostConfigurable(t *testing.T) {
	r := mustRound(t, "CAT", Options{MaxLives: 6, HintCost: 2})
	if _, err := r.UseHint(); err != nil {
		t.Fatalf("UseHint: %v", err)
	}
	if r.Lives != 4 {
		t.Errorf("lives = %d, want 4 after cost-2 hint", r.Lives)
	}

	r2 := mustRound(t, "CAT", Options{MaxLives: 2, HintCost: 2})
	if _, err := r2.UseHint(); !errors.Is(err, ErrHintUnavailable) {
		t.Errorf("UseHint with lives==cost: %v, want ErrHintUnavailable", err)
	}
}

func TestPreseeding(t *testing.T) {
	t.Run("Present letters start revealed", func(t *testing.T) {
		r := mustRound(t, "STORM", Options{Preseed: "RSTLNE"})
		if got := r.Mask(); got != "ST_R_" {
			t.Errorf("mask = %q, want ST_R_", got)
		}
		if r.Lives != DefaultMaxLives {
			t.Errorf("preseeding cost lives: %d", r.Lives)
		}
	})

	t.Run("Absent letters are blocked without penalty", func(t *testing.T) {
		r := mustRound(t, "DOG", Options{Preseed: "Z"})
		res := mustGuess(t, r, "Z")
		if res.Outcome != OutcomeAlreadyGuessed || r.Lives != DefaultMaxLives {
			t.Errorf("preseeded miss: outcome=%v lives=%d", res.Outcome, r.Lives)
		}
	})

	t.Run("Lowercase preseed normalized", func(t *testing.T) {
		r := mustRound(t, "STONE", Options{Preseed: "s"})
		if got := r.Mask(); got != "S____" {
			t.Errorf("mask = %q, want S____", got)
		}
	})

	t.Run("Completing preseed wins at construction", func(t *testing.T) {
		r := mustRound(t, "STONE", Options{Preseed: "RSTLNE"})
		if r.Status() != StatusWon || !r.Finished() {
			t.Errorf("status = %v, want won at construction", r.Status())
		}
		if r.Mask() != "STONE" {
			t.Errorf("mask = %q, want STONE", r.Mask())
		}
		if r.HintsUsed != 0 || r.Lives != DefaultMaxLives {
			t.Errorf("construction win consumed resources: lives=%d hints=%d", r.Lives, r.HintsUsed)
		}
	})
}

func TestSnapshot(t *testing.T) {
	r := mustRound(t, "CAT", Options{MaxLives: 6})
	mustGuess(t, r, "C")
	mustGuess(t, r, "Z")

	s := r.Snapshot()
	if s.Mask != "C__" || s.Lives != 5 || s.MaxLives != 6 || s.Status != StatusPlaying {
		t.Errorf("snapshot = %+v", s)
	}
	if s.Secret != "" {
		t.Errorf("snapshot leaked secret before terminal state: %q", s.Secret)
	}
	if len(s.UsedLetters) != 2 || s.UsedLetters[0] != "C" || s.UsedLetters[1] != "Z" {
		t.Errorf("used letters = %v, want sorted [C Z]", s.UsedLetters)
	}

	mustGuess(t, r, "A")
	mustGuess(t, r, "T")
	s = r.Snapshot()
	if s.Status != StatusWon || s.Secret != "CAT" {
		t.Errorf("terminal snapshot = %+v", s)
	}
}

func TestWrongGuesses(t *testing.T) {
	r := mustRound(t, "CAT", Options{MaxLives: 6})
	mustGuess(t, r, "Z")
	mustGuess(t, r, "Q")
	if got := r.WrongGuesses(); got != 2 {
		t.Errorf("WrongGuesses = %d, want 2", got)
	}
}
