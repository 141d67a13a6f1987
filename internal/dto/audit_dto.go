package dto

import "time"

// ─── Requests ────────────────────────────────────────────────────────────────

type AuditQueryFilter struct {
	Severity string `form:"severity" validate:"omitempty,oneof=info warning critical"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type AuditEventResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditListResponse struct {
	Data  []AuditEventResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
