package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BroadcastMessage is one event delivered to subscribers of a stream
type BroadcastMessage struct {
	Stream  string          `json:"stream"`
	Payload json.RawMessage `json:"payload"`
}

// Subscription is one observer's handle on a stream. Receive from C; a
// subscription that falls behind has messages dropped rather than blocking
// the publisher.
type Subscription struct {
	stream string
	C      chan BroadcastMessage
}

// Stream returns the stream this subscription is attached to
func (s *Subscription) Stream() string { return s.stream }

// Broadcaster is the publish/subscribe contract for real-time updates.
//
// Publish delivers to the snapshot of subscribers present at the moment of
// publication; late subscribers do not receive earlier messages (no replay).
// Delivery is best-effort per observer.
type Broadcaster interface {
	Publish(ctx context.Context, stream string, payload any) error
	Subscribe(stream string) *Subscription
	Unsubscribe(sub *Subscription)
	SubscriberCount(stream string) int
}

var (
	broadcastsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broadcasts_published_total",
		Help: "Total number of messages published per stream",
	}, []string{"stream"})
	broadcastsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broadcasts_dropped_total",
		Help: "Total number of messages dropped for slow subscribers per stream",
	}, []string{"stream"})
	broadcastSubscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "broadcast_subscribers",
		Help: "Currently connected subscribers per stream",
	}, []string{"stream"})
)

// BroadcastHub implements Broadcaster with an in-process registry of
// subscriber channels per named stream.
type BroadcastHub struct {
	mu         sync.RWMutex
	streams    map[string]map[*Subscription]struct{}
	bufferSize int
}

// NewBroadcastHub creates a new broadcast hub
func NewBroadcastHub(bufferSize int) *BroadcastHub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &BroadcastHub{
		streams:    make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new observer on the stream
func (h *BroadcastHub) Subscribe(stream string) *Subscription {
	sub := &Subscription{
		stream: stream,
		C:      make(chan BroadcastMessage, h.bufferSize),
	}

	h.mu.Lock()
	subs, ok := h.streams[stream]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.streams[stream] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	broadcastSubscribers.WithLabelValues(stream).Inc()
	return sub
}

// Unsubscribe removes the observer and closes its channel. Safe to call once
// per subscription; pending messages in the buffer are discarded with it.
func (h *BroadcastHub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	subs, ok := h.streams[sub.stream]
	if ok {
		if _, present := subs[sub]; present {
			delete(subs, sub)
			close(sub.C)
			broadcastSubscribers.WithLabelValues(sub.stream).Dec()
		}
		if len(subs) == 0 {
			delete(h.streams, sub.stream)
		}
	}
	h.mu.Unlock()
}

// Publish delivers payload to every subscriber currently on the stream.
// Sends never block: a subscriber with a full buffer misses the message.
func (h *BroadcastHub) Publish(ctx context.Context, stream string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast payload: %w", err)
	}
	msg := BroadcastMessage{Stream: stream, Payload: data}

	// Sends stay under the read lock so Unsubscribe cannot close a channel
	// mid-delivery; they never block, so the lock is held only briefly.
	h.mu.RLock()
	for sub := range h.streams[stream] {
		select {
		case sub.C <- msg:
		default:
			broadcastsDroppedTotal.WithLabelValues(stream).Inc()
		}
	}
	h.mu.RUnlock()

	broadcastsPublishedTotal.WithLabelValues(stream).Inc()
	return nil
}

// SubscriberCount returns the number of observers currently on the stream
func (h *BroadcastHub) SubscriberCount(stream string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[stream])
}
