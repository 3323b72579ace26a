package service

// Broadcaster pushes real-time events to connected clients. The hub
// implements it; services treat delivery as fire-and-forget.
type Broadcaster interface {
	// ToRoom sends to every connection subscribed to a conversation room.
	ToRoom(room string, payload any)
	// ToUsers sends to the personal channels of the given users.
	ToUsers(userIDs []int64, payload any)
	// All sends to every connected client.
	All(payload any)
}

// NopBroadcaster drops every event. Used in tests and as a default until
// the hub is wired in.
type NopBroadcaster struct{}

func (NopBroadcaster) ToRoom(string, any)     {}
func (NopBroadcaster) ToUsers([]int64, any)   {}
func (NopBroadcaster) All(any)                {}
