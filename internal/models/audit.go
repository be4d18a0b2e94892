package models

import (
	"time"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"` // 0 for scheduled jobs
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions
const (
	AuditCreate     = "CREATE"
	AuditUpdate     = "UPDATE"
	AuditDelete     = "DELETE"
	AuditCancel     = "CANCEL"
	AuditReactivate = "REACTIVATE"
	AuditReorder    = "REORDER"
	AuditLogin      = "LOGIN"
)

// Actor identifies who triggered a mutation, for the audit trail
type Actor struct {
	UserID    uint
	IP        string
	UserAgent string
}
