package domain

// quoteEdges lists every allowed quote status change. pending may be decided
// directly; the review step is recorded when a PM claims the quote.
var quoteEdges = map[QuoteStatus][]QuoteStatus{
	QuotePending:  {QuoteInReview, QuoteQuoted, QuoteDeclined},
	QuoteInReview: {QuoteQuoted, QuoteDeclined},
	QuoteQuoted:   {QuoteConverted},
}

var projectEdges = map[ProjectStatus][]ProjectStatus{
	ProjectDraft:     {ProjectPlanning, ProjectActive},
	ProjectPlanning:  {ProjectActive},
	ProjectActive:    {ProjectOnHold, ProjectCompleted},
	ProjectOnHold:    {ProjectActive},
	ProjectCompleted: {ProjectClosed},
}

// taskEdges excludes blocked; Block and Unblock gate that state separately.
var taskEdges = map[TaskStatus][]TaskStatus{
	TaskPending:      {TaskAcknowledged, TaskInProgress, TaskCompleted},
	TaskAcknowledged: {TaskInProgress, TaskCompleted},
	TaskInProgress:   {TaskCompleted},
}

func hasEdge[S comparable](edges map[S][]S, from, to S) bool {
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionQuote reports whether a quote may move from one status to another.
func CanTransitionQuote(from, to QuoteStatus) bool {
	return hasEdge(quoteEdges, from, to)
}

// CanTransitionProject reports whether a project may move from one status to another.
func CanTransitionProject(from, to ProjectStatus) bool {
	return hasEdge(projectEdges, from, to)
}

// CanTransitionTask reports whether a task may move between two non-blocked statuses.
func CanTransitionTask(from, to TaskStatus) bool {
	return hasEdge(taskEdges, from, to)
}

// ValidQuoteStatus reports whether s is one of the five quote lifecycle states.
func ValidQuoteStatus(s QuoteStatus) bool {
	switch s {
	case QuotePending, QuoteInReview, QuoteQuoted, QuoteDeclined, QuoteConverted:
		return true
	}
	return false
}
