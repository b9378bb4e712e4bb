package websocket

// EventPublisher pushes events to a workspace's live subscribers
type EventPublisher interface {
	Publish(workspaceID int32, event Event)
}

// MultiPublisher is implemented by publishers that can fan one event out to
// several workspaces more cheaply than repeated Publish calls
type MultiPublisher interface {
	EventPublisher
	PublishMany(workspaceIDs []int32, event Event)
}

var _ MultiPublisher = (*Hub)(nil)

// PublishEach sends event to every workspace in ids through p
func PublishEach(p EventPublisher, ids []int32, event Event) {
	if p == nil || len(ids) == 0 {
		return
	}
	if mp, ok := p.(MultiPublisher); ok {
		mp.PublishMany(ids, event)
		return
	}
	for _, id := range ids {
		p.Publish(id, event)
	}
}

// Discard drops every event; use it where live updates are disabled
type Discard struct{}

func (Discard) Publish(int32, Event) {}
