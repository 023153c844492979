package reminder

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weidustudio/studio/pkg/cerr"
)

type Server struct {
	job *Job
}

func NewServer(job *Job) *Server {
	return &Server{job: job}
}

func (s *Server) Mount(r chi.Router) {
	r.Post("/reminders/run", s.RunReminders)
}

func (s *Server) RunReminders(w http.ResponseWriter, r *http.Request) {
	res, err := s.job.Run(r.Context())
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), res)
}
