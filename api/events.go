// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/luxfi/auth"
	"github.com/luxfi/geth/event"
	"github.com/luxfi/log"
)

const (
	eventBufferSize   = 16
	eventWriteTimeout = 5 * time.Second
)

// EventSource publishes authorizer events.
type EventSource interface {
	Subscribe(ch chan<- auth.Event) event.Subscription
}

var _ EventSource = (*auth.FeedSink)(nil)

// streamEvents writes each event as a line of JSON until the client goes
// away. A client that stops reading is dropped after eventWriteTimeout.
func (h *handler) streamEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	events := make(chan auth.Event, eventBufferSize)
	sub := h.events.Subscribe(events)
	defer sub.Unsubscribe()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.log.Warn("event stream not supported", log.Err(err))
		return
	}

	enc := json.NewEncoder(w)
	for {
		select {
		case e := <-events:
			if err := rc.SetWriteDeadline(time.Now().Add(eventWriteTimeout)); err != nil {
				h.log.Debug("failed to set write deadline", log.Err(err))
			}
			if err := enc.Encode(e); err != nil {
				h.log.Debug("event stream closed", log.Err(err))
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-sub.Err():
			return
		case <-r.Context().Done():
			return
		}
	}
}
