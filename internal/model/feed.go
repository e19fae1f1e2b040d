package model

// StatusRow is one record from the external project-status feed. The feed
// carries no stable identifier; the free-text property name is the only
// attribute shared with the backend.
type StatusRow struct {
	Property string            `json:"property"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// ScheduleRow is one record from the external construction-schedule feed,
// keyed the same way as the status feed.
type ScheduleRow struct {
	Property string            `json:"property"`
	Fields   map[string]string `json:"fields,omitempty"`
}
