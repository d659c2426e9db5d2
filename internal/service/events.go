package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventHostAdded         EventType = "host_added"
	EventHostRemoved       EventType = "host_removed"
	EventNetworkAdded      EventType = "network_added"
	EventNetworkRenamed    EventType = "network_renamed"
	EventNetworkRemoved    EventType = "network_removed"
	EventConnectionCreated EventType = "connection_created"
	EventConnectionUpdated EventType = "connection_updated"
	EventConnectionDeleted EventType = "connection_deleted"
	EventDocumentLoaded    EventType = "document_loaded"
	EventSnapshotSaved     EventType = "snapshot_saved"
	EventRejected          EventType = "operation_rejected"
)

// Event represents a change in the design, or a rejected operation
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Rejection is the payload of EventRejected
type Rejection struct {
	Op      string `json:"op"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
