package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/clog"
)

// Roster is the slice of the schedule store the worker endpoints need.
type Roster interface {
	ListWorkers(ctx context.Context) ([]*Worker, error)
	UpsertWorker(ctx context.Context, w *Worker) error
	DeleteWorker(ctx context.Context, id string) error
}

type Server struct {
	roster Roster
	now    func() time.Time
}

func NewServer(roster Roster) *Server {
	return &Server{roster: roster, now: time.Now}
}

func (s *Server) Mount(r chi.Router) {
	r.Get("/workers", s.ListWorkers)
	r.Post("/workers", s.CreateWorker)
	r.Put("/workers/{id}", s.UpdateWorker)
	r.Delete("/workers/{id}", s.DeleteWorker)
}

type workerRequest struct {
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Skills        []string `json:"skills"`
	MaxConcurrent int      `json:"max_concurrent"`
}

func (req *workerRequest) apply(w *Worker) {
	w.Name = req.Name
	w.Role = req.Role
	w.Skills = req.Skills
	if w.Skills == nil {
		w.Skills = []string{}
	}
	// An omitted capacity means one task at a time.
	w.MaxConcurrent = req.MaxConcurrent
	if w.MaxConcurrent == 0 {
		w.MaxConcurrent = 1
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return cerr.NewError(cerr.InvalidArgument, "invalid request body", err)
	}
	return nil
}

func (s *Server) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := s.roster.ListWorkers(r.Context())
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	if workers == nil {
		workers = []*Worker{}
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{"workers": workers})
}

func (s *Server) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req workerRequest
	if err := decode(r, &req); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	now := s.now()
	wk := &Worker{ID: ulid.Make().String(), CreatedAt: now, UpdatedAt: now}
	req.apply(wk)
	if err := s.roster.UpsertWorker(r.Context(), wk); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	clog.AddAttribute(r.Context(), "worker_id", wk.ID)
	cerr.SetJSONResponseWithStatus(r.Context(), http.StatusCreated, map[string]any{"worker": wk})
}

// UpdateWorker replaces the worker with the given id, creating it when it
// does not exist yet.
func (s *Server) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	var req workerRequest
	if err := decode(r, &req); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	wk := &Worker{ID: chi.URLParam(r, "id"), UpdatedAt: s.now()}
	req.apply(wk)
	if err := s.roster.UpsertWorker(r.Context(), wk); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	clog.AddAttribute(r.Context(), "worker_id", wk.ID)
	cerr.SetJSONResponse(r.Context(), map[string]any{"worker": wk})
}

func (s *Server) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	clog.AddAttribute(r.Context(), "worker_id", id)
	if err := s.roster.DeleteWorker(r.Context(), id); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), nil)
}
