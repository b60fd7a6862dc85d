package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	statuses := typedValues[domain.ProjectStatus](r.URL.Query()["status"])
	projects, err := s.backend.ListProjects(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]backend.ProjectJSON, 0, len(projects))
	for _, p := range projects {
		out = append(out, backend.ProjectToJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.backend.GetProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.ProjectToJSON(p))
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var in backend.ProjectJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	p := in.Domain()
	actor := actorFrom(r)
	p.CreatedByID = domain.CoalesceStr(actor.UserID, p.CreatedByID)
	p.CreatedByName = domain.CoalesceStr(actor.Name, p.CreatedByName)

	created, err := s.backend.CreateProject(r.Context(), p, r.Header.Get(backend.HeaderIdempotencyKey))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, backend.ProjectToJSON(created))
}

func (s *Server) publishProject(w http.ResponseWriter, r *http.Request) {
	var in backend.PublishJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.backend.PublishProject(r.Context(), mux.Vars(r)["id"], domain.ProjectStatus(in.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.ProjectToJSON(p))
}

func (s *Server) listRFIs(w http.ResponseWriter, r *http.Request) {
	statuses := typedValues[domain.RFIStatus](r.URL.Query()["status"])
	rfis, err := s.backend.ListRFIs(r.Context(), mux.Vars(r)["id"], statuses...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]backend.RFIJSON, 0, len(rfis))
	for _, rfi := range rfis {
		out = append(out, backend.RFIToJSON(rfi))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listConstraints(w http.ResponseWriter, r *http.Request) {
	var resolved *bool
	if v := r.URL.Query().Get("resolved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, domain.NewValidationError("resolved", "must be true or false"))
			return
		}
		resolved = &b
	}
	constraints, err := s.backend.ListConstraints(r.Context(), mux.Vars(r)["id"], resolved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]backend.ConstraintJSON, 0, len(constraints))
	for _, c := range constraints {
		out = append(out, backend.ConstraintToJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}
