package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrNotSignedIn      = errors.New("not signed in")
	ErrNicknameRequired = errors.New("a nickname is required")

	// Room errors
	ErrNoActiveRoom    = errors.New("no active room")
	ErrInvalidRoomCode = errors.New("room code must be 6 characters")
	ErrGuestNotJoined  = errors.New("the guest has not joined yet")
	ErrGuestNotReady   = errors.New("the guest is not ready yet")
	ErrRoomChanged     = errors.New("the room changed underneath this action")

	// Play errors
	ErrNotYourTurn      = errors.New("it is not your turn")
	ErrInvalidTile      = errors.New("tile must be between 1 and 9")
	ErrTileAlreadyUsed  = errors.New("tile has already been played")
	ErrAlreadySubmitted = errors.New("a tile was already submitted this round")
)
