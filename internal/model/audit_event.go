package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is the persisted form of an audit entry drained from the redis
// queue by the background persister.
type AuditEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Action    string    `gorm:"type:varchar(60);not null;index"`
	Details   string    `gorm:"type:text"`
	Severity  string    `gorm:"type:varchar(10);not null;index"`
	CreatedAt time.Time `gorm:"index"`
}
