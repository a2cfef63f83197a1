// Package events provides the in-process event bus for lifecycle events
package events

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gigbridge/gigbridge/internal/logger"
)

// Topic represents the kind of lifecycle event for real-time delivery
type Topic string

const (
	// TopicJobUpdate is emitted on every job status transition
	TopicJobUpdate Topic = "job:update"
	// TopicBidReceived is emitted when a worker submits a bid
	TopicBidReceived Topic = "job:bidReceived"
	// TopicBidChangeUpdate is emitted on change-request negotiation steps
	TopicBidChangeUpdate Topic = "bid:changeUpdate"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents one lifecycle event. Delivery is at-most-once, best-effort.
type Event struct {
	ID       string                 // Unique event ID
	Topic    Topic                  // The event topic
	JobID    uint                   // The job the event concerns
	BidID    uint                   // The bid, when relevant
	WorkerID uint                   // The worker, when relevant
	Status   string                 // The job status after the transition
	Payload  map[string]interface{} // Additional context
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	handlers   = make(map[Topic][]Handler)
	handlersMu sync.RWMutex
	eventChan  = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific topic
func Subscribe(topic Topic, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[topic] = append(handlers[topic], handler)
	logger.Debugf("Registered handler for topic: %s", topic)
}

// Publish sends an event to be processed. The event ID is assigned here.
func Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	select {
	case eventChan <- event:
		logger.Debugf("Published event %s (job: %d)", event.Topic, event.JobID)
	default:
		// Best-effort delivery: a full buffer drops the event rather than
		// blocking the state transition that produced it.
		logger.Warnf("Dropped event %s (job: %d): channel full", event.Topic, event.JobID)
	}
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-eventChan:
			handlersMu.RLock()
			topicHandlers := handlers[event.Topic]
			handlersMu.RUnlock()

			for _, handler := range topicHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s: %v", e.Topic, err)
					}
				}(handler, event)
			}
		}
	}
}
