// internal/game/types.go
//
// Core type definitions for the guess-the-number engine.
// Defines:
//   - Key: difficulty tier identifier (easy/medium/hard).
//   - Difficulty: guess range + attempt cap for one tier.
//   - State: coarse round state (active/won/lost).
//   - OutcomeKind / Outcome: result of a single submitted guess.
//   - Round: state for a single in-progress or finished round.

package game

// Key identifies one of the three fixed difficulty tiers.
type Key string

const (
	Easy   Key = "easy"
	Medium Key = "medium"
	Hard   Key = "hard"
)

// Difficulty defines the inclusive guess range and attempt cap for a tier.
// The table is static: defined at process start, never mutated.
type Difficulty struct {
	Key         Key `json:"key"`
	Min         int `json:"min"`
	Max         int `json:"max"`
	MaxAttempts int `json:"maxAttempts"`
}

// Difficulties is the fixed tier table, easiest first.
var Difficulties = []Difficulty{
	{Key: Easy, Min: 1, Max: 20, MaxAttempts: 6},
	{Key: Medium, Min: 1, Max: 50, MaxAttempts: 8},
	{Key: Hard, Min: 1, Max: 100, MaxAttempts: 10},
}

// Lookup returns the Difficulty for a key.
func Lookup(k Key) (Difficulty, bool) {
	for _, d := range Difficulties {
		if d.Key == k {
			return d, true
		}
	}
	return Difficulty{}, false
}

// Severity maps a difficulty key to its position in the fixed severity
// order easy < medium < hard. Unknown keys sort after hard.
func Severity(k Key) int {
	for i, d := range Difficulties {
		if d.Key == k {
			return i
		}
	}
	return len(Difficulties)
}

// State is the coarse round state.
// A round starts active; won and lost are terminal.
type State string

const (
	StateActive State = "active"
	StateWon    State = "won"
	StateLost   State = "lost"
)

// OutcomeKind classifies the result of one submitted guess.
// Possible values:
//   - "continue":      valid guess, round still active (hint updated).
//   - "won":           guess equals the target; round is over.
//   - "lost":          attempt cap reached without a correct guess.
//   - "invalid_input": input is not a whole number; no attempt consumed.
//   - "out_of_range":  integer outside the tier's range; no attempt consumed.
//   - "already_over":  guess submitted against a terminal round; no-op.
type OutcomeKind string

const (
	OutcomeContinue     OutcomeKind = "continue"
	OutcomeWon          OutcomeKind = "won"
	OutcomeLost         OutcomeKind = "lost"
	OutcomeInvalidInput OutcomeKind = "invalid_input"
	OutcomeOutOfRange   OutcomeKind = "out_of_range"
	OutcomeAlreadyOver  OutcomeKind = "already_over"
)

// Outcome is the caller-visible result of a guess.
// Attempts is set on a win (final attempt count); Target is set on a loss.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	Attempts int         `json:"attempts,omitempty"`
	Target   int         `json:"target,omitempty"`
}

// Round holds the state of a single round. Rounds are values: Guess returns
// an updated copy rather than mutating in place, so callers always hold an
// immutable snapshot.
type Round struct {
	ID         string     // Unique round identifier (UUID).
	Difficulty Difficulty // Active tier config, fixed for the round.
	Target     int        // Secret number, fixed for the round.
	Attempts   int        // Valid guesses consumed so far.
	Hint       string     // Human-readable guidance, updated per guess.
	State      State      // active | won | lost.
	DailyDate  string     // "YYYY-MM-DD" when part of the daily challenge.
}
