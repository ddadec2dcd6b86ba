package service

import "errors"

// Alert texts shown to the user.
const (
	AlertPositionUnavailable = "Could not get your position"
	AlertInvalidInputs       = "Inputs have to be positive numbers!"
)

// Sentinel kinds for session errors.
var (
	ErrMapNotReady         = errors.New("map not ready")
	ErrNoPendingClick      = errors.New("no pending map click")
	ErrNotStarted          = errors.New("session not started")
	ErrMissingCollaborator = errors.New("missing collaborator")
)
