package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

func (s *Server) listQuotes(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	quotes, err := s.backend.ListQuotes(r.Context(), backend.QuoteQuery{
		Statuses:      typedValues[domain.QuoteStatus](q["status"]),
		Urgencies:     typedValues[domain.Urgency](q["urgency"]),
		SubmittedByID: q.Get("submitted_by"),
		AssignedToID:  q.Get("assigned_to"),
		Offset:        offset,
		Limit:         limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]backend.QuoteJSON, 0, len(quotes))
	for _, qr := range quotes {
		out = append(out, backend.QuoteToJSON(qr))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.backend.GetQuote(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.QuoteToJSON(q))
}

func (s *Server) createQuote(w http.ResponseWriter, r *http.Request) {
	var in backend.QuoteJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	q := in.Domain()
	actor := actorFrom(r)
	q.SubmittedByID = domain.CoalesceStr(actor.UserID, q.SubmittedByID)
	q.SubmittedByName = domain.CoalesceStr(actor.Name, q.SubmittedByName)

	created, err := s.backend.CreateQuote(r.Context(), q, r.Header.Get(backend.HeaderIdempotencyKey))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, backend.QuoteToJSON(created))
}

func (s *Server) updateQuote(w http.ResponseWriter, r *http.Request) {
	var in backend.QuoteUpdateJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.backend.UpdateQuote(r.Context(), mux.Vars(r)["id"], backend.QuoteUpdate{
		Status:       domain.QuoteStatus(in.Status),
		QuotedAmount: in.QuotedAmount,
		QuoteNotes:   in.QuoteNotes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.QuoteToJSON(q))
}

func (s *Server) assignQuote(w http.ResponseWriter, r *http.Request) {
	var in backend.AssignJSON
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.backend.AssignQuote(r.Context(), mux.Vars(r)["id"], in.AssigneeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.QuoteToJSON(q))
}

func (s *Server) convertQuote(w http.ResponseWriter, r *http.Request) {
	res, err := s.backend.ConvertQuote(r.Context(), mux.Vars(r)["id"], r.Header.Get(backend.HeaderIdempotencyKey))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, backend.ConvertJSON{ProjectID: res.ProjectID, ProjectNumber: res.ProjectNumber})
}
