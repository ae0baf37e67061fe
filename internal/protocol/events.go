// Package protocol defines the JSON events exchanged with editor clients.
//
// Every frame is an envelope {"type": ..., "data": ...}. Inbound payloads are
// validated before they reach the session coordinator; outbound payloads keep
// the shapes the editor client renders directly.
package protocol

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/dkeye/Scribe/internal/domain"
)

// Inbound event types.
const (
	TypeJoinRoom      = "join-room"
	TypeContentChange = "content-change"
	TypeLeaveRoom     = "leave-room"
	TypePing          = "ping"
	TypeWhoAmI        = "whoami"
)

// Outbound event types.
const (
	TypeConnected      = "connected"
	TypeRoomData       = "room-data"
	TypeUserJoined     = "user-joined"
	TypeContentChanged = "content-changed"
	TypeUserLeft       = "user-left"
	TypePong           = "pong"
	TypeError          = "error"
)

// Error codes carried by TypeError events.
const (
	CodeBadPayload  = "bad_payload"
	CodeUnknownType = "unknown_type"
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal"
)

var (
	ErrMissingType    = errors.New("missing event type")
	ErrMissingPayload = errors.New("missing event payload")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Envelope is an inbound frame with its payload left undecoded.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses the envelope of an inbound frame.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	return env, nil
}

// DecodePayload unmarshals the envelope payload into v and validates it.
func DecodePayload(env Envelope, v any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrMissingPayload
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", env.Type, err)
	}
	return nil
}

type JoinRoom struct {
	RoomID   string `json:"roomId" validate:"required"`
	Username string `json:"username"`
}

// ContentChange keeps Content as a pointer so that an absent field is told
// apart from an emptied document.
type ContentChange struct {
	RoomID  string  `json:"roomId" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

type RoomData struct {
	Content string          `json:"content"`
	Members []domain.Member `json:"members"`
}

type Identity struct {
	ID   domain.ConnID `json:"id"`
	Room domain.RoomID `json:"room,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func RoomDataEvent(content string, members []domain.Member) Event {
	return Event{Type: TypeRoomData, Data: RoomData{Content: content, Members: members}}
}

func UserJoinedEvent(m domain.Member) Event {
	return Event{Type: TypeUserJoined, Data: m}
}

func ContentChangedEvent(content string) Event {
	return Event{Type: TypeContentChanged, Data: content}
}

func UserLeftEvent(id domain.ConnID) Event {
	return Event{Type: TypeUserLeft, Data: id}
}

func ErrorEvent(code, message string) Event {
	return Event{Type: TypeError, Data: Error{Code: code, Message: message}}
}
