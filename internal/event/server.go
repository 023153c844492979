// Package event streams event bus traffic to browsers as server-sent
// events.
package event

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/weidustudio/studio/internal/eventbus"
	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/clog"
)

const keepAliveInterval = 30 * time.Second

type Server struct {
	eventBus  *eventbus.Bus
	keepAlive time.Duration
}

func NewServer(eventBus *eventbus.Bus) *Server {
	return &Server{eventBus: eventBus, keepAlive: keepAliveInterval}
}

func (s *Server) Mount(r chi.Router) {
	r.Get("/events", s.SubscribeEvents)
}

// Filter narrows a subscription. Empty fields match everything.
type Filter struct {
	Types      []eventbus.Type
	ProjectIDs []string
}

func (f Filter) Match(e *eventbus.Event) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type) {
		return false
	}
	return len(f.ProjectIDs) == 0 || slices.Contains(f.ProjectIDs, e.ResourceID)
}

// SubscribeEvents holds the connection open and writes one SSE frame per
// matching event until the client goes away.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := Filter{ProjectIDs: schedule.ProjectIDsFromQuery(r)}
	for _, t := range r.URL.Query()["type"] {
		filter.Types = append(filter.Types, eventbus.Type(t))
	}

	rc := http.NewResponseController(w)
	subID, ch := s.eventBus.Subscribe(64)
	defer s.eventBus.Unsubscribe(subID)
	clog.AddAttribute(ctx, "subscription_id", subID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	cerr.MarkWritten(ctx)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		clog.AddError(ctx, err)
		return
	}

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case e, ok := <-ch:
			if !ok {
				return
			}
			if !filter.Match(e) {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				clog.AddError(ctx, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
