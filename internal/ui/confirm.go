package ui

import (
	"fmt"
	"strings"
)

// ConfirmationState is the outcome of a typed-phrase confirmation.
type ConfirmationState int

const (
	// Prompted: the phrase has been presented, no input resolved yet.
	Prompted ConfirmationState = iota
	// Confirmed: the operator typed the exact phrase.
	Confirmed
	// Cancelled: any other input.
	Cancelled
)

// Confirmation is a two-state confirmation protocol for destructive
// actions. It is decoupled from console I/O so it can be tested without
// simulating stdin: callers collect the input however they like and
// feed it to Resolve.
type Confirmation struct {
	Phrase string
	state  ConfirmationState
}

// NewDropConfirmation builds the confirmation gate for dropping all
// objects in a schema. The required phrase is "DELETE <SCHEMA>" with the
// schema upper-cased.
func NewDropConfirmation(schema string) *Confirmation {
	return &Confirmation{
		Phrase: fmt.Sprintf("DELETE %s", strings.ToUpper(schema)),
		state:  Prompted,
	}
}

// Resolve matches the input against the phrase. The match is exact and
// case-sensitive; anything else cancels.
func (c *Confirmation) Resolve(input string) ConfirmationState {
	if input == c.Phrase {
		c.state = Confirmed
	} else {
		c.state = Cancelled
	}
	return c.state
}

// State returns the current protocol state.
func (c *Confirmation) State() ConfirmationState {
	return c.state
}
