package main

import (
	"strings"
	"testing"

	"github.com/seanl/neo-hangman/internal/game"
)

func TestRenderBoard(t *testing.T) {
	rd, err := game.NewRound("BANANA", game.Options{MaxLives: 6})
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}
	if _, err := rd.Guess("A"); err != nil {
		t.Fatalf("Guess: %v", err)
	}
	if _, err := rd.Guess("Z"); err != nil {
		t.Fatalf("Guess: %v", err)
	}

	got := renderBoard(rd.Snapshot())
	for _, want := range []string{
		"_ A _ A _ A",
		"Lives: 5/6",
		"Used:  A Z",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("board missing %q:\n%s", want, got)
		}
	}
}

func TestRenderBoardNoUsedLetters(t *testing.T) {
	rd, err := game.NewRound("CAT", game.Options{})
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}
	got := renderBoard(rd.Snapshot())
	if strings.Contains(got, "Used:") {
		t.Errorf("board shows empty used line:\n%s", got)
	}
	if !strings.Contains(got, "_ _ _") {
		t.Errorf("board missing mask:\n%s", got)
	}
}
