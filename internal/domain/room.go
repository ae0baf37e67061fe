// Package domain contains entity without logic, just meta-data
package domain

// RoomID is chosen by the client that creates the room.
type RoomID string

// DefaultContent is the document a freshly created room starts with.
const DefaultContent = `<p style="font-family: Calibri, sans-serif; font-size: 11pt; line-height: 1.5;">Start typing...</p>`
