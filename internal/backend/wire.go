package backend

import (
	"time"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// JSON shapes exchanged with the office API. The domain types carry no tags;
// these are the only place the wire format is defined.

const wireDateLayout = "2006-01-02"

type QuoteJSON struct {
	ID                 string     `json:"id,omitempty"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Address            string     `json:"address,omitempty"`
	City               string     `json:"city,omitempty"`
	State              string     `json:"state,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	CustomerName       string     `json:"customer_name,omitempty"`
	CustomerPhone      string     `json:"customer_phone,omitempty"`
	CustomerEmail      string     `json:"customer_email,omitempty"`
	Photos             []string   `json:"photos,omitempty"`
	ScopeNotes         string     `json:"scope_notes,omitempty"`
	Urgency            string     `json:"urgency,omitempty"`
	PreferredSchedule  string     `json:"preferred_schedule,omitempty"`
	Status             string     `json:"status,omitempty"`
	SubmittedByID      string     `json:"submitted_by_id,omitempty"`
	SubmittedByName    string     `json:"submitted_by_name,omitempty"`
	AssignedToID       string     `json:"assigned_to_id,omitempty"`
	QuotedAmount       *float64   `json:"quoted_amount,omitempty"`
	QuoteNotes         string     `json:"quote_notes,omitempty"`
	QuotedAt           *time.Time `json:"quoted_at,omitempty"`
	ConvertedProjectID string     `json:"converted_project_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func QuoteToJSON(q *domain.QuoteRequest) QuoteJSON {
	return QuoteJSON{
		ID:                 q.ID,
		Title:              q.Title,
		Description:        q.Description,
		Address:            q.Address,
		City:               q.City,
		State:              q.State,
		Latitude:           q.Latitude,
		Longitude:          q.Longitude,
		CustomerName:       q.CustomerName,
		CustomerPhone:      q.CustomerPhone,
		CustomerEmail:      q.CustomerEmail,
		Photos:             q.Photos,
		ScopeNotes:         q.ScopeNotes,
		Urgency:            string(q.Urgency),
		PreferredSchedule:  q.PreferredSchedule,
		Status:             string(q.Status),
		SubmittedByID:      q.SubmittedByID,
		SubmittedByName:    q.SubmittedByName,
		AssignedToID:       q.AssignedToID,
		QuotedAmount:       q.QuotedAmount,
		QuoteNotes:         q.QuoteNotes,
		QuotedAt:           q.QuotedAt,
		ConvertedProjectID: q.ConvertedProjectID,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
}

func (j QuoteJSON) Domain() *domain.QuoteRequest {
	return &domain.QuoteRequest{
		ID:                 j.ID,
		Title:              j.Title,
		Description:        j.Description,
		Address:            j.Address,
		City:               j.City,
		State:              j.State,
		Latitude:           j.Latitude,
		Longitude:          j.Longitude,
		CustomerName:       j.CustomerName,
		CustomerPhone:      j.CustomerPhone,
		CustomerEmail:      j.CustomerEmail,
		Photos:             j.Photos,
		ScopeNotes:         j.ScopeNotes,
		Urgency:            domain.Urgency(j.Urgency),
		PreferredSchedule:  j.PreferredSchedule,
		Status:             domain.QuoteStatus(j.Status),
		SubmittedByID:      j.SubmittedByID,
		SubmittedByName:    j.SubmittedByName,
		AssignedToID:       j.AssignedToID,
		QuotedAmount:       j.QuotedAmount,
		QuoteNotes:         j.QuoteNotes,
		QuotedAt:           j.QuotedAt,
		ConvertedProjectID: j.ConvertedProjectID,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}
}

// QuoteUpdateJSON is the PATCH body for a quote decision.
type QuoteUpdateJSON struct {
	Status       string   `json:"status"`
	QuotedAmount *float64 `json:"quoted_amount,omitempty"`
	QuoteNotes   string   `json:"quote_notes,omitempty"`
}

type AssignJSON struct {
	AssigneeID string `json:"assignee_id"`
}

type ConvertJSON struct {
	ProjectID     string `json:"project_id"`
	ProjectNumber string `json:"project_number"`
}

func (j ConvertJSON) Result() *app.ConvertResult {
	return &app.ConvertResult{ProjectID: j.ProjectID, ProjectNumber: j.ProjectNumber}
}

type ProjectJSON struct {
	ID            string    `json:"id,omitempty"`
	Number        string    `json:"number,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	ClientName    string    `json:"client_name,omitempty"`
	ContractValue *float64  `json:"contract_value,omitempty"`
	SourceQuoteID string    `json:"source_quote_id,omitempty"`
	CreatedByID   string    `json:"created_by_id,omitempty"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ProjectToJSON(p *domain.Project) ProjectJSON {
	return ProjectJSON{
		ID:            p.ID,
		Number:        p.Number,
		Name:          p.Name,
		Description:   p.Description,
		Status:        string(p.Status),
		Address:       p.Address,
		City:          p.City,
		State:         p.State,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		ClientName:    p.ClientName,
		ContractValue: p.ContractValue,
		SourceQuoteID: p.SourceQuoteID,
		CreatedByID:   p.CreatedByID,
		CreatedByName: p.CreatedByName,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (j ProjectJSON) Domain() *domain.Project {
	return &domain.Project{
		ID:            j.ID,
		Number:        j.Number,
		Name:          j.Name,
		Description:   j.Description,
		Status:        domain.ProjectStatus(j.Status),
		Address:       j.Address,
		City:          j.City,
		State:         j.State,
		Latitude:      j.Latitude,
		Longitude:     j.Longitude,
		ClientName:    j.ClientName,
		ContractValue: j.ContractValue,
		SourceQuoteID: j.SourceQuoteID,
		CreatedByID:   j.CreatedByID,
		CreatedByName: j.CreatedByName,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

type PublishJSON struct {
	Status string `json:"status"`
}

type TaskJSON struct {
	ID             string     `json:"id,omitempty"`
	ProjectID      string     `json:"project_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	AssigneeID     string     `json:"assignee_id"`
	CreatedByID    string     `json:"created_by_id,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	Status         string     `json:"status,omitempty"`
	BlockedFrom    string     `json:"blocked_from,omitempty"`
	DueDate        *string    `json:"due_date,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func TaskToJSON(t *domain.Task) TaskJSON {
	return TaskJSON{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		Title:          t.Title,
		Description:    t.Description,
		AssigneeID:     t.AssigneeID,
		CreatedByID:    t.CreatedByID,
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		BlockedFrom:    string(t.BlockedFrom),
		DueDate:        formatWireDate(t.DueDate),
		AcknowledgedAt: t.AcknowledgedAt,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func (j TaskJSON) Domain() (*domain.Task, error) {
	due, err := parseWireDate(j.DueDate, "due_date")
	if err != nil {
		return nil, err
	}
	return &domain.Task{
		ID:             j.ID,
		ProjectID:      j.ProjectID,
		Title:          j.Title,
		Description:    j.Description,
		AssigneeID:     j.AssigneeID,
		CreatedByID:    j.CreatedByID,
		Priority:       domain.TaskPriority(j.Priority),
		Status:         domain.TaskStatus(j.Status),
		BlockedFrom:    domain.TaskStatus(j.BlockedFrom),
		DueDate:        due,
		AcknowledgedAt: j.AcknowledgedAt,
		CompletedAt:    j.CompletedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}, nil
}

type RFIJSON struct {
	ID        string    `json:"id,omitempty"`
	ProjectID string    `json:"project_id"`
	Number    string    `json:"number,omitempty"`
	Question  string    `json:"question"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	DueDate   *string   `json:"due_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func RFIToJSON(r *domain.RFI) RFIJSON {
	return RFIJSON{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Number:    r.Number,
		Question:  r.Question,
		Location:  r.Location,
		Status:    string(r.Status),
		DueDate:   formatWireDate(r.DueDate),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (j RFIJSON) Domain() (*domain.RFI, error) {
	due, err := parseWireDate(j.DueDate, "due_date")
	if err != nil {
		return nil, err
	}
	return &domain.RFI{
		ID:        j.ID,
		ProjectID: j.ProjectID,
		Number:    j.Number,
		Question:  j.Question,
		Location:  j.Location,
		Status:    domain.RFIStatus(j.Status),
		DueDate:   due,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}, nil
}

type ConstraintJSON struct {
	ID          string    `json:"id,omitempty"`
	ProjectID   string    `json:"project_id"`
	Description string    `json:"description"`
	Type        string    `json:"type,omitempty"`
	Area        string    `json:"area,omitempty"`
	OwnerName   string    `json:"owner_name,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	IsResolved  bool      `json:"is_resolved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ConstraintToJSON(c *domain.Constraint) ConstraintJSON {
	return ConstraintJSON{
		ID:          c.ID,
		ProjectID:   c.ProjectID,
		Description: c.Description,
		Type:        c.Type,
		Area:        c.Area,
		OwnerName:   c.OwnerName,
		DueDate:     formatWireDate(c.DueDate),
		IsResolved:  c.IsResolved,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (j ConstraintJSON) Domain() (*domain.Constraint, error) {
	due, err := parseWireDate(j.DueDate, "due_date")
	if err != nil {
		return nil, err
	}
	return &domain.Constraint{
		ID:          j.ID,
		ProjectID:   j.ProjectID,
		Description: j.Description,
		Type:        j.Type,
		Area:        j.Area,
		OwnerName:   j.OwnerName,
		DueDate:     due,
		IsResolved:  j.IsResolved,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}, nil
}

type DailyReportJSON struct {
	ID                string    `json:"id,omitempty"`
	ProjectID         string    `json:"project_id"`
	SubmittedByID     string    `json:"submitted_by_id,omitempty"`
	SubmittedByName   string    `json:"submitted_by_name,omitempty"`
	ReportDate        string    `json:"report_date"`
	CrewCount         int       `json:"crew_count"`
	WorkCompleted     string    `json:"work_completed,omitempty"`
	DelaysConstraints string    `json:"delays_constraints,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func DailyReportToJSON(r *domain.DailyReport) DailyReportJSON {
	return DailyReportJSON{
		ID:                r.ID,
		ProjectID:         r.ProjectID,
		SubmittedByID:     r.SubmittedByID,
		SubmittedByName:   r.SubmittedByName,
		ReportDate:        r.ReportDate.Format(wireDateLayout),
		CrewCount:         r.CrewCount,
		WorkCompleted:     r.WorkCompleted,
		DelaysConstraints: r.DelaysConstraints,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (j DailyReportJSON) Domain() (*domain.DailyReport, error) {
	date, err := parseWireDate(&j.ReportDate, "report_date")
	if err != nil {
		return nil, err
	}
	r := &domain.DailyReport{
		ID:                j.ID,
		ProjectID:         j.ProjectID,
		SubmittedByID:     j.SubmittedByID,
		SubmittedByName:   j.SubmittedByName,
		CrewCount:         j.CrewCount,
		WorkCompleted:     j.WorkCompleted,
		DelaysConstraints: j.DelaysConstraints,
		Notes:             j.Notes,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
	}
	if date != nil {
		r.ReportDate = *date
	}
	return r, nil
}

type QueueStatsJSON struct {
	DraftProjects     int `json:"draft_projects"`
	PendingQuotes     int `json:"pending_quotes"`
	InReviewQuotes    int `json:"in_review_quotes"`
	TotalActionNeeded int `json:"total_action_needed"`
}

func QueueStatsToJSON(s *app.QueueStats) QueueStatsJSON {
	return QueueStatsJSON{
		DraftProjects:     s.DraftProjects,
		PendingQuotes:     s.PendingQuotes,
		InReviewQuotes:    s.InReviewQuotes,
		TotalActionNeeded: s.TotalActionNeeded,
	}
}

// ErrorJSON is the body of every non-2xx response.
type ErrorJSON struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func formatWireDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(wireDateLayout)
	return &s
}

func parseWireDate(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(wireDateLayout, *s)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	return &t, nil
}
