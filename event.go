// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"encoding/json"
	"strconv"

	"github.com/luxfi/geth/event"
	"github.com/luxfi/log"
)

const (
	EventStandard = "auth_weighted"
	EventVersion  = "1.0.0"

	// OperatorshipTransferredEvent is emitted after every successful rotation.
	OperatorshipTransferredEvent = "operatorship_transferred"

	// EventLogPrefix prefixes the JSON form of an event in logs.
	EventLogPrefix = "EVENT_JSON:"
)

// Event is a structured notification published by the authorizer.
type Event struct {
	Standard string      `json:"standard"`
	Version  string      `json:"version"`
	Event    string      `json:"event"`
	Data     interface{} `json:"data"`
}

// OperatorshipTransferred carries a new operator set in human-readable form.
type OperatorshipTransferred struct {
	NewOperators string `json:"new_operators"`
	NewWeights   string `json:"new_weights"`
	NewThreshold string `json:"new_threshold"`
}

func newOperatorshipTransferred(s *OperatorSet) Event {
	return Event{
		Standard: EventStandard,
		Version:  EventVersion,
		Event:    OperatorshipTransferredEvent,
		Data: OperatorshipTransferred{
			NewOperators: FormatOperators(s.Operators),
			NewWeights:   FormatWeights(s.Weights),
			NewThreshold: strconv.FormatUint(uint64(s.Threshold), 10),
		},
	}
}

// String returns the log line form of the event
func (e Event) String() string {
	b, err := json.Marshal(e)
	if err != nil {
		return EventLogPrefix + "{}"
	}
	return EventLogPrefix + string(b)
}

// EventSink receives events. Emit is called in epoch order and outside the
// authorizer's read-write lock, so a slow sink delays only later rotations.
type EventSink interface {
	Emit(Event)
}

var (
	_ EventSink = (*LogSink)(nil)
	_ EventSink = (*FeedSink)(nil)
	_ EventSink = MultiSink(nil)
)

// LogSink writes events to a logger.
type LogSink struct {
	log log.Logger
}

func NewLogSink(logger log.Logger) *LogSink {
	return &LogSink{log: logger}
}

func (s *LogSink) Emit(e Event) {
	s.log.Info(e.String())
}

// FeedSink publishes events to subscribers.
type FeedSink struct {
	feed event.Feed
}

func NewFeedSink() *FeedSink {
	return &FeedSink{}
}

// Subscribe delivers events to ch, which must be a chan Event.
func (s *FeedSink) Subscribe(ch chan<- Event) event.Subscription {
	return s.feed.Subscribe(ch)
}

// Emit blocks until every subscriber has taken e.
func (s *FeedSink) Emit(e Event) {
	s.feed.Send(e)
}

// MultiSink fans events out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}
