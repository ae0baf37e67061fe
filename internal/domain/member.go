package domain

// ConnID identifies one live client connection. Assigned by the transport
// when the socket is accepted and stable for its lifetime.
type ConnID string

// Member represents a connection's participation in a room.
// No transport or lifecycle logic here.
type Member struct {
	ID   ConnID `json:"id"`
	Name string `json:"name"`
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
// The display name is taken as-is: empty and duplicate names are allowed.
func NewMember(id ConnID, name string) Member {
	return Member{ID: id, Name: name}
}
