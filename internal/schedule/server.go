package schedule

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/clog"
)

type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service: service}
}

func (s *Server) Mount(r chi.Router) {
	r.Get("/schedules", s.ResumeSchedule)
	r.Post("/schedules/generate", s.GenerateSchedule)
	r.Post("/schedules/save", s.SaveSchedule)
	r.Post("/schedules/edit", s.EditSchedule)
}

type generateRequest struct {
	ProjectIDs []string `json:"project_ids"`
}

type saveRequest struct {
	ProjectIDs []string      `json:"project_ids"`
	Plan       *planner.Plan `json:"plan"`
}

type editRequest struct {
	Plan *planner.Plan `json:"plan"`
	Edit planner.Edit  `json:"edit"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return cerr.NewError(cerr.InvalidArgument, "invalid request body", err)
	}
	return nil
}

// ProjectIDsFromQuery accepts both ?project_id=a&project_id=b and
// ?project_id=a,b.
func ProjectIDsFromQuery(r *http.Request) []string {
	var ids []string
	for _, v := range r.URL.Query()["project_id"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (s *Server) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	clog.AddAttribute(r.Context(), "project_ids", req.ProjectIDs)
	plan, err := s.service.Generate(r.Context(), req.ProjectIDs)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), plan)
}

func (s *Server) ResumeSchedule(w http.ResponseWriter, r *http.Request) {
	ids := ProjectIDsFromQuery(r)
	clog.AddAttribute(r.Context(), "project_ids", ids)
	plan, err := s.service.Resume(r.Context(), ids)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), plan)
}

func (s *Server) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decode(r, &req); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	clog.AddAttribute(r.Context(), "project_ids", req.ProjectIDs)
	res, err := s.service.Save(r.Context(), req.ProjectIDs, req.Plan)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), res)
}

func (s *Server) EditSchedule(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decode(r, &req); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	plan, err := s.service.Edit(r.Context(), req.Plan, req.Edit)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), plan)
}
