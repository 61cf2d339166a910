// internal/game/engine.go
//
// Core engine for a single guess-the-number round.
// Responsibilities:
//   - Create new rounds with a target drawn uniformly from the tier range.
//   - Validate and apply guesses (whole number, within range).
//   - Derive higher/lower hints and the win/loss messages.
//   - Track state transitions: active → won/lost.
//
// Notes:
//   - Invalid or out-of-range input never consumes an attempt.
//   - Guessing against a finished round is a no-op (OutcomeAlreadyOver).
//   - The random draw is the only non-deterministic element; everything
//     else is a pure function of (round, input).
package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Start constructs a new active round for the tier, drawing the target
// uniformly at random from [d.Min, d.Max] inclusive.
func Start(d Difficulty) Round {
	return StartWithTarget(d, randomTarget(d))
}

// StartWithTarget constructs a round with a fixed target.
// Used by tests and by the daily challenge, which derives the target
// deterministically for the date.
func StartWithTarget(d Difficulty, target int) Round {
	return Round{
		ID:         uuid.NewString(),
		Difficulty: d,
		Target:     target,
		Hint:       fmt.Sprintf("Guess a number between %d and %d.", d.Min, d.Max),
		State:      StateActive,
	}
}

// Guess validates and applies one submitted guess, returning the updated
// round and the outcome. The receiver is untouched.
//
// Validation rules:
//   - Round must still be active.
//   - Input must parse as a base-10 integer after trimming whitespace.
//   - Parsed value must lie within the tier's inclusive range.
//
// State transitions:
//   - Guess equals target → won, regardless of remaining attempts.
//   - Attempt cap reached without a match → lost, hint reveals the target.
func (r Round) Guess(raw string) (Round, Outcome) {
	if r.State != StateActive {
		return r, Outcome{Kind: OutcomeAlreadyOver}
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		r.Hint = "Enter a whole number."
		return r, Outcome{Kind: OutcomeInvalidInput}
	}

	d := r.Difficulty
	if n < d.Min || n > d.Max {
		r.Hint = fmt.Sprintf("Pick a number between %d and %d.", d.Min, d.Max)
		return r, Outcome{Kind: OutcomeOutOfRange}
	}

	r.Attempts++
	switch {
	case n == r.Target:
		r.State = StateWon
		r.Hint = fmt.Sprintf("Correct! You got it in %d %s.", r.Attempts, plural(r.Attempts, "attempt"))
		return r, Outcome{Kind: OutcomeWon, Attempts: r.Attempts}
	case r.Attempts >= d.MaxAttempts:
		r.State = StateLost
		r.Hint = fmt.Sprintf("Out of attempts. The number was %d.", r.Target)
		return r, Outcome{Kind: OutcomeLost, Target: r.Target}
	case n < r.Target:
		r.Hint = "Higher."
		return r, Outcome{Kind: OutcomeContinue}
	default:
		r.Hint = "Lower."
		return r, Outcome{Kind: OutcomeContinue}
	}
}

// randomTarget draws uniformly from [d.Min, d.Max] using crypto/rand.
func randomTarget(d Difficulty) int {
	span := int64(d.Max - d.Min + 1)
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		// crypto/rand only fails if the platform source is broken;
		// fall back to the lower bound rather than aborting a game.
		return d.Min
	}
	return d.Min + int(n.Int64())
}

// plural returns the word with an "s" appended unless n == 1.
func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
