// Package state manages per-user conversation steps for the bot wizards.
package state

import "context"

// Storage defines the persistence contract for conversation state.
type Storage interface {
	// GetState returns the pending step of a family for the specified user.
	GetState(ctx context.Context, userID int64, family Family) (*UserState, error)
	// SetState saves the provided state in its family slot.
	SetState(ctx context.Context, userID int64, state *UserState) error
	// ClearState removes the state of a family. Clearing an empty slot is not an error.
	ClearState(ctx context.Context, userID int64, family Family) error
	// GetAllStates returns every stored state.
	GetAllStates(ctx context.Context) ([]*UserState, error)
}
