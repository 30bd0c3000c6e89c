// Command hangman-cli plays hangman rounds in the terminal against the
// same core packages the server uses. No network involved; handy for
// manual testing or as an alternative front-end.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/seanl/neo-hangman/internal/game"
	"github.com/seanl/neo-hangman/internal/words"
)

const hintCommand = "!hint"

func main() {
	_ = godotenv.Load()

	category := flag.String("category", words.CategoryAny, "word category to play")
	lives := flag.Int("lives", game.DefaultMaxLives, "lives per round")
	bonus := flag.String("bonus", "", "letters to preseed, e.g. RSTLNE")
	flag.Parse()

	bank, err := words.Init()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load word bank:", err)
		os.Exit(1)
	}

	in := bufio.NewScanner(os.Stdin)
	fmt.Println("Welcome to Neo-Hangman!")
	for {
		if err := playRound(bank, in, *category, *lives, *bonus); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print("\nPlay again? [y/N] ")
		if !in.Scan() || !strings.EqualFold(strings.TrimSpace(in.Text()), "y") {
			return
		}
	}
}

// playRound runs one round from selection to win/loss.
func playRound(bank words.Bank, in *bufio.Scanner, category string, lives int, bonus string) error {
	secret, err := bank.Pick(category, nil)
	if err != nil {
		return fmt.Errorf("pick word: %w", err)
	}
	rd, err := game.NewRound(secret, game.Options{MaxLives: lives, Preseed: bonus})
	if err != nil {
		return fmt.Errorf("new round: %w", err)
	}

	for !rd.Finished() {
		fmt.Println()
		fmt.Println(renderBoard(rd.Snapshot()))
		fmt.Printf("Guess a letter (%s for a hint): ", hintCommand)
		if !in.Scan() {
			return in.Err()
		}
		input := strings.TrimSpace(in.Text())

		if strings.EqualFold(input, hintCommand) {
			rev, err := rd.UseHint()
			switch {
			case err == nil:
				fmt.Printf("Hint: try %q (cost %d life)\n", rev.Letter, rd.HintCost)
			case errors.Is(err, game.ErrHintUnavailable):
				fmt.Println("Not enough lives for a hint.")
			case errors.Is(err, game.ErrNothingToReveal):
				fmt.Println("Everything is already revealed.")
			default:
				return err
			}
			continue
		}

		res, err := rd.Guess(input)
		if err != nil {
			if errors.Is(err, game.ErrInvalidInput) {
				fmt.Println("Please enter a single letter.")
				continue
			}
			return err
		}
		switch res.Outcome {
		case game.OutcomeCorrect:
			fmt.Printf("%q is in the word!\n", res.Letter)
		case game.OutcomeIncorrect:
			fmt.Printf("No %q in the word.\n", res.Letter)
		case game.OutcomeAlreadyGuessed:
			fmt.Printf("You already tried %q.\n", res.Letter)
		}
	}

	if rd.Won() {
		fmt.Printf("\nYou won! The word was: %s\n", rd.Secret)
	} else {
		fmt.Printf("\nYou lost! The word was: %s\n", rd.Secret)
	}
	return nil
}

// renderBoard formats a snapshot for the terminal: the spaced-out mask,
// the life counter, and the letters tried so far.
func renderBoard(s game.Snapshot) string {
	var b strings.Builder
	b.WriteString("Word:  ")
	for i, c := range s.Mask {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	fmt.Fprintf(&b, "\nLives: %d/%d", s.Lives, s.MaxLives)
	if len(s.UsedLetters) > 0 {
		fmt.Fprintf(&b, "\nUsed:  %s", strings.Join(s.UsedLetters, " "))
	}
	return b.String()
}
