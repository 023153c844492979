package export

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/clog"
)

type Server struct {
	source Source
}

func NewServer(source Source) *Server {
	return &Server{source: source}
}

func (s *Server) Mount(r chi.Router) {
	r.Get("/schedules/export", s.ExportSchedule)
}

// ExportSchedule streams the saved schedule of the selected projects, or of
// every project when none is selected.
func (s *Server) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	ids := schedule.ProjectIDsFromQuery(r)
	rows, err := s.source.FindAssignments(r.Context(), schedule.Filter{ProjectIDs: ids})
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.Internal, "server error", err)
		return
	}
	clog.AddAttribute(r.Context(), "rows", len(rows))

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", Filename(ids)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		clog.AddError(r.Context(), err)
	}
	cerr.MarkWritten(r.Context())
}
