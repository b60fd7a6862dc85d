package domain

type QuoteStatus string

const (
	QuotePending   QuoteStatus = "pending"
	QuoteInReview  QuoteStatus = "in_review"
	QuoteQuoted    QuoteStatus = "quoted"
	QuoteDeclined  QuoteStatus = "declined"
	QuoteConverted QuoteStatus = "converted"
)

type Urgency string

const (
	UrgencyStandard  Urgency = "standard"
	UrgencyRush      Urgency = "rush"
	UrgencyEmergency Urgency = "emergency"
)

// ValidUrgencies is the canonical set of accepted urgency strings.
var ValidUrgencies = map[Urgency]bool{
	UrgencyStandard: true, UrgencyRush: true, UrgencyEmergency: true,
}

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectClosed    ProjectStatus = "closed"
)

type TaskStatus string

const (
	TaskPending      TaskStatus = "pending"
	TaskAcknowledged TaskStatus = "acknowledged"
	TaskInProgress   TaskStatus = "in_progress"
	TaskCompleted    TaskStatus = "completed"
	TaskBlocked      TaskStatus = "blocked"
)

type TaskPriority string

const (
	PriorityUrgent TaskPriority = "urgent"
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// DeliveryStatus is the read-time projection of a delivery's booleans.
// It is never persisted.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryLate      DeliveryStatus = "late"
)

type RFIStatus string

const (
	RFIDraft     RFIStatus = "draft"
	RFISubmitted RFIStatus = "submitted"
	RFIRouted    RFIStatus = "routed"
	RFIAnswered  RFIStatus = "answered"
	RFIClosed    RFIStatus = "closed"
)

type BlockerType string

const (
	BlockerRFI        BlockerType = "rfi"
	BlockerChange     BlockerType = "change"
	BlockerDelivery   BlockerType = "delivery"
	BlockerConstraint BlockerType = "constraint"
	BlockerTask       BlockerType = "task"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

type QueueItemType string

const (
	QueueItemQuote       QueueItemType = "quote_request"
	QueueItemDraft       QueueItemType = "draft_project"
	QueueItemDailyReport QueueItemType = "daily_report"
)

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleProjectManager  Role = "project_manager"
	RoleSuperintendent  Role = "superintendent"
	RoleForeman         Role = "foreman"
	RoleProjectEngineer Role = "project_engineer"
	RoleFieldWorker     Role = "field_worker"
)
