package project

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/clog"
)

const defaultPageSize = 50

type Server struct {
	repo Repository
	now  func() time.Time
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo, now: time.Now}
}

func (s *Server) Mount(r chi.Router) {
	r.Get("/projects", s.ListProjects)
	r.Post("/projects", s.CreateProject)
	r.Get("/projects/{id}", s.GetProject)
	r.Put("/projects/{id}", s.UpdateProject)
	r.Delete("/projects/{id}", s.DeleteProject)
}

type projectRequest struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	Area        *string `json:"area"`
	Description *string `json:"description"`
	Published   *bool   `json:"published"`
}

// apply copies the fields present in the request.
func (req *projectRequest) apply(p *Project) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Title, req.Title)
	set(&p.Category, req.Category)
	set(&p.Location, req.Location)
	set(&p.Area, req.Area)
	set(&p.Description, req.Description)
	if req.Published != nil {
		p.Published = *req.Published
	}
}

func decodeRequest(r *http.Request) (*projectRequest, error) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid request body", err)
	}
	return &req, nil
}

func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	now := s.now()
	p := &Project{ID: ulid.Make().String(), CreatedAt: now, UpdatedAt: now}
	req.apply(p)
	if err := p.Validate(); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	if err := s.repo.Create(r.Context(), p); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	clog.AddAttribute(r.Context(), "project_id", p.ID)
	cerr.SetJSONResponseWithStatus(r.Context(), http.StatusCreated, map[string]any{"project": p})
}

func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{"project": p})
}

func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit, offset := defaultPageSize, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "limit must be a non-negative integer", err)
			return
		}
		if n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "offset must be a non-negative integer", err)
			return
		}
		offset = n
	}
	projects, total, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	if projects == nil {
		projects = []*Project{}
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{
		"projects": projects,
		"pagination": map[string]int{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (s *Server) UpdateProject(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	p, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	req.apply(p)
	p.UpdatedAt = s.now()
	if err := p.Validate(); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	if err := s.repo.Update(r.Context(), p); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{"project": p})
}

func (s *Server) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), nil)
}
