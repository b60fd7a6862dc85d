package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

var _ Backend = (*Client)(nil)

func (c *Client) ListQuotes(ctx context.Context, q QuoteQuery) ([]*domain.QuoteRequest, error) {
	query := url.Values{}
	for _, s := range q.Statuses {
		query.Add("status", string(s))
	}
	for _, u := range q.Urgencies {
		query.Add("urgency", string(u))
	}
	if q.SubmittedByID != "" {
		query.Set("submitted_by", q.SubmittedByID)
	}
	if q.AssignedToID != "" {
		query.Set("assigned_to", q.AssignedToID)
	}
	setPaging(query, q.Offset, q.Limit)

	var out []QuoteJSON
	err := c.do(ctx, call{method: http.MethodGet, route: "/quote-requests", path: "/quote-requests", query: query, out: &out})
	if err != nil {
		return nil, err
	}
	quotes := make([]*domain.QuoteRequest, 0, len(out))
	for _, j := range out {
		quotes = append(quotes, j.Domain())
	}
	return quotes, nil
}

func (c *Client) GetQuote(ctx context.Context, id string) (*domain.QuoteRequest, error) {
	var out QuoteJSON
	err := c.do(ctx, call{method: http.MethodGet, route: "/quote-requests/{id}", path: "/quote-requests/" + url.PathEscape(id), out: &out})
	if err != nil {
		return nil, err
	}
	return out.Domain(), nil
}

func (c *Client) CreateQuote(ctx context.Context, q *domain.QuoteRequest, idempotencyKey string) (*domain.QuoteRequest, error) {
	var out QuoteJSON
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/quote-requests", path: "/quote-requests",
		body: QuoteToJSON(q), idempotencyKey: idempotencyKey, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Domain(), nil
}

func (c *Client) UpdateQuote(ctx context.Context, id string, u QuoteUpdate) (*domain.QuoteRequest, error) {
	var out QuoteJSON
	err := c.do(ctx, call{
		method: http.MethodPatch, route: "/quote-requests/{id}", path: "/quote-requests/" + url.PathEscape(id),
		body: QuoteUpdateJSON{Status: string(u.Status), QuotedAmount: u.QuotedAmount, QuoteNotes: u.QuoteNotes},
		out:  &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Domain(), nil
}

func (c *Client) AssignQuote(ctx context.Context, id, assigneeID string) (*domain.QuoteRequest, error) {
	var out QuoteJSON
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/quote-requests/{id}/assign", path: "/quote-requests/" + url.PathEscape(id) + "/assign",
		body: AssignJSON{AssigneeID: assigneeID}, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Domain(), nil
}

func (c *Client) ConvertQuote(ctx context.Context, id, idempotencyKey string) (*app.ConvertResult, error) {
	var out ConvertJSON
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/quote-requests/{id}/convert", path: "/quote-requests/" + url.PathEscape(id) + "/convert",
		idempotencyKey: idempotencyKey, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Result(), nil
}

func (c *Client) ListProjects(ctx context.Context, statuses ...domain.ProjectStatus) ([]*domain.Project, error) {
	query := url.Values{}
	for _, s := range statuses {
		query.Add("status", string(s))
	}
	var out []ProjectJSON
	if err := c.do(ctx, call{method: http.MethodGet, route: "/projects", path: "/projects", query: query, out: &out}); err != nil {
		return nil, err
	}
	projects := make([]*domain.Project, 0, len(out))
	for _, j := range out {
		projects = append(projects, j.Domain())
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var out ProjectJSON
	err := c.do(ctx, call{method: http.MethodGet, route: "/projects/{id}", path: "/projects/" + url.PathEscape(id), out: &out})
	if err != nil {
		return nil, err
	}
	return out.Domain(), nil
}

func (c *Client) CreateProject(ctx context.Context, p *domain.Project, idempotencyKey string) (*domain.Project, error) {
	var out ProjectJSON
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/projects", path: "/projects",
		body: ProjectToJSON(p), idempotencyKey: idempotencyKey, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Domain(), nil
}

func (c *Client) PublishProject(ctx context.Context, id string, to domain.ProjectStatus) (*domain.Project, error) {
	var out ProjectJSON
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/projects/{id}/publish", path: "/projects/" + url.PathEscape(id) + "/publish",
		body: PublishJSON{Status: string(to)}, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Domain(), nil
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]*domain.Task, error) {
	query := url.Values{}
	if q.ProjectID != "" {
		query.Set("project_id", q.ProjectID)
	}
	if q.AssigneeID != "" {
		query.Set("assignee_id", q.AssigneeID)
	}
	for _, s := range q.Statuses {
		query.Add("status", string(s))
	}
	var out []TaskJSON
	if err := c.do(ctx, call{method: http.MethodGet, route: "/tasks", path: "/tasks", query: query, out: &out}); err != nil {
		return nil, err
	}
	tasks := make([]*domain.Task, 0, len(out))
	for _, j := range out {
		t, err := j.Domain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var out TaskJSON
	err := c.do(ctx, call{method: http.MethodGet, route: "/tasks/{id}", path: "/tasks/" + url.PathEscape(id), out: &out})
	if err != nil {
		return nil, err
	}
	return out.Domain()
}

func (c *Client) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	var out TaskJSON
	err := c.do(ctx, call{method: http.MethodPost, route: "/tasks", path: "/tasks", body: TaskToJSON(t), out: &out})
	if err != nil {
		return nil, err
	}
	return out.Domain()
}

func (c *Client) AcknowledgeTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return c.taskAction(ctx, id, "acknowledge", actor)
}

func (c *Client) StartTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return c.taskAction(ctx, id, "start", actor)
}

func (c *Client) CompleteTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return c.taskAction(ctx, id, "complete", actor)
}

func (c *Client) BlockTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return c.taskAction(ctx, id, "block", actor)
}

func (c *Client) UnblockTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	return c.taskAction(ctx, id, "unblock", actor)
}

func (c *Client) taskAction(ctx context.Context, id, action string, actor domain.Actor) (*domain.Task, error) {
	var out TaskJSON
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/tasks/{id}/" + action, path: "/tasks/" + url.PathEscape(id) + "/" + action,
		actor: &actor, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Domain()
}

func (c *Client) ListRFIs(ctx context.Context, projectID string, statuses ...domain.RFIStatus) ([]*domain.RFI, error) {
	query := url.Values{}
	for _, s := range statuses {
		query.Add("status", string(s))
	}
	var out []RFIJSON
	err := c.do(ctx, call{
		method: http.MethodGet, route: "/projects/{id}/rfis", path: "/projects/" + url.PathEscape(projectID) + "/rfis",
		query: query, out: &out,
	})
	if err != nil {
		return nil, err
	}
	rfis := make([]*domain.RFI, 0, len(out))
	for _, j := range out {
		r, err := j.Domain()
		if err != nil {
			return nil, err
		}
		rfis = append(rfis, r)
	}
	return rfis, nil
}

func (c *Client) CreateRFI(ctx context.Context, r *domain.RFI) (*domain.RFI, error) {
	var out RFIJSON
	err := c.do(ctx, call{method: http.MethodPost, route: "/rfis", path: "/rfis", body: RFIToJSON(r), out: &out})
	if err != nil {
		return nil, err
	}
	return out.Domain()
}

func (c *Client) ListConstraints(ctx context.Context, projectID string, resolved *bool) ([]*domain.Constraint, error) {
	query := url.Values{}
	if resolved != nil {
		query.Set("resolved", strconv.FormatBool(*resolved))
	}
	var out []ConstraintJSON
	err := c.do(ctx, call{
		method: http.MethodGet, route: "/projects/{id}/constraints", path: "/projects/" + url.PathEscape(projectID) + "/constraints",
		query: query, out: &out,
	})
	if err != nil {
		return nil, err
	}
	constraints := make([]*domain.Constraint, 0, len(out))
	for _, j := range out {
		cn, err := j.Domain()
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, cn)
	}
	return constraints, nil
}

func (c *Client) CreateConstraint(ctx context.Context, cn *domain.Constraint) (*domain.Constraint, error) {
	var out ConstraintJSON
	err := c.do(ctx, call{method: http.MethodPost, route: "/constraints", path: "/constraints", body: ConstraintToJSON(cn), out: &out})
	if err != nil {
		return nil, err
	}
	return out.Domain()
}

func (c *Client) ListDailyReports(ctx context.Context, q DailyReportQuery) ([]*domain.DailyReport, error) {
	query := url.Values{}
	if q.ProjectID != "" {
		query.Set("project_id", q.ProjectID)
	}
	if q.Since != nil {
		query.Set("since", q.Since.Format(wireDateLayout))
	}
	var out []DailyReportJSON
	if err := c.do(ctx, call{method: http.MethodGet, route: "/daily-reports", path: "/daily-reports", query: query, out: &out}); err != nil {
		return nil, err
	}
	reports := make([]*domain.DailyReport, 0, len(out))
	for _, j := range out {
		r, err := j.Domain()
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (c *Client) CreateDailyReport(ctx context.Context, r *domain.DailyReport, idempotencyKey string) (*domain.DailyReport, error) {
	var out DailyReportJSON
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/daily-reports", path: "/daily-reports",
		body: DailyReportToJSON(r), idempotencyKey: idempotencyKey, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Domain()
}

func (c *Client) QueueStats(ctx context.Context) (*app.QueueStats, error) {
	var out QueueStatsJSON
	if err := c.do(ctx, call{method: http.MethodGet, route: "/queue/stats", path: "/queue/stats", out: &out}); err != nil {
		return nil, err
	}
	return &app.QueueStats{
		DraftProjects:     out.DraftProjects,
		PendingQuotes:     out.PendingQuotes,
		InReviewQuotes:    out.InReviewQuotes,
		TotalActionNeeded: out.TotalActionNeeded,
	}, nil
}

func setPaging(query url.Values, offset, limit int) {
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
}
