package domain

import "time"

// BlockerItem is one synthesized entry of the field cockpit blocker feed.
// It summarizes every open record of one source; it is never persisted.
type BlockerItem struct {
	Type        BlockerType
	Title       string
	Description string
	Severity    Severity
	DueDate     *time.Time
	Count       int
}
