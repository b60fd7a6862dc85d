package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := s.backend.ListTasks(r.Context(), backend.TaskQuery{
		ProjectID:  q.Get("project_id"),
		AssigneeID: q.Get("assignee_id"),
		Statuses:   typedValues[domain.TaskStatus](q["status"]),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]backend.TaskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, backend.TaskToJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.backend.GetTask(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.TaskToJSON(t))
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in backend.TaskJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := in.Domain()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t.CreatedByID = domain.CoalesceStr(actorFrom(r).UserID, t.CreatedByID)
	created, err := s.backend.CreateTask(r.Context(), t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, backend.TaskToJSON(created))
}

func (s *Server) taskAction(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if actor.UserID == "" {
		s.writeError(w, r, domain.NewValidationError(backend.HeaderUserID, "is required"))
		return
	}
	vars := mux.Vars(r)
	actions := map[string]func(context.Context, string, domain.Actor) (*domain.Task, error){
		"acknowledge": s.backend.AcknowledgeTask,
		"start":       s.backend.StartTask,
		"complete":    s.backend.CompleteTask,
		"block":       s.backend.BlockTask,
		"unblock":     s.backend.UnblockTask,
	}
	t, err := actions[vars["action"]](r.Context(), vars["id"], actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.TaskToJSON(t))
}

func (s *Server) createRFI(w http.ResponseWriter, r *http.Request) {
	var in backend.RFIJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	rfi, err := in.Domain()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.backend.CreateRFI(r.Context(), rfi)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, backend.RFIToJSON(created))
}

func (s *Server) createConstraint(w http.ResponseWriter, r *http.Request) {
	var in backend.ConstraintJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := in.Domain()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.backend.CreateConstraint(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, backend.ConstraintToJSON(created))
}

func (s *Server) listDailyReports(w http.ResponseWriter, r *http.Request) {
	since, err := queryDate(r, "since")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reports, err := s.backend.ListDailyReports(r.Context(), backend.DailyReportQuery{
		ProjectID: r.URL.Query().Get("project_id"),
		Since:     since,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]backend.DailyReportJSON, 0, len(reports))
	for _, dr := range reports {
		out = append(out, backend.DailyReportToJSON(dr))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createDailyReport(w http.ResponseWriter, r *http.Request) {
	var in backend.DailyReportJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	dr, err := in.Domain()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	actor := actorFrom(r)
	dr.SubmittedByID = domain.CoalesceStr(actor.UserID, dr.SubmittedByID)
	dr.SubmittedByName = domain.CoalesceStr(actor.Name, dr.SubmittedByName)

	created, err := s.backend.CreateDailyReport(r.Context(), dr, r.Header.Get(backend.HeaderIdempotencyKey))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, backend.DailyReportToJSON(created))
}

func (s *Server) queueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.backend.QueueStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.QueueStatsToJSON(stats))
}
