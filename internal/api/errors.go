package api

import (
	"errors"
	"fmt"
)

// Known error codes returned by the authority when an action is
// understood but refused. Anything else is surfaced with its raw message.
const (
	CodeGuestNotJoined     = "GUEST_NOT_JOINED"
	CodeGuestNotReady      = "GUEST_NOT_READY"
	CodeOnlyHostCanStart   = "ONLY_HOST_CAN_START"
	CodeRoomAlreadyStarted = "ROOM_ALREADY_STARTED"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeTileAlreadyUsed    = "TILE_ALREADY_USED"
	CodeNicknameTaken      = "NICKNAME_TAKEN"
	CodeNicknameInvalid    = "NICKNAME_INVALID"
)

// APIError is a structured rejection from the authority
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// IsCode reports whether err is an APIError with the given code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

var userMessages = map[string]string{
	CodeGuestNotJoined:     "The guest has not joined the room yet.",
	CodeGuestNotReady:      "The guest is not ready. Ask them to press ready, then start again.",
	CodeOnlyHostCanStart:   "Only the host can start the game.",
	CodeRoomAlreadyStarted: "The game has already started.",
	CodeRoomNotFound:       "Room not found. Refresh and try again.",
	CodeNotYourTurn:        "It is not your turn.",
	CodeTileAlreadyUsed:    "That tile has already been played.",
	CodeNicknameTaken:      "That nickname is taken. Pick another one.",
	CodeNicknameInvalid:    "Nicknames must be 2-20 characters.",
}

// UserMessage maps a known rejection code to user-facing text. Unmapped
// errors fall back to their raw message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg, ok := userMessages[apiErr.Code]; ok {
			return msg
		}
		return apiErr.Message
	}
	return err.Error()
}
