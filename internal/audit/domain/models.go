package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

type AuditLog struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID *uuid.UUID        `json:"platform_id,omitempty" gorm:"type:uuid;index"`
	ActorType  string            `json:"actor_type" gorm:"not null"`
	ActorID    *string           `json:"actor_id,omitempty"`
	Action     string            `json:"action" gorm:"not null;index"`
	TargetType string            `json:"target_type" gorm:"not null"`
	TargetID   *string           `json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	IPAddress  *string           `json:"ip_address,omitempty"`
	UserAgent  *string           `json:"user_agent,omitempty"`
	CreatedAt  time.Time         `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string { return "audit_logs" }
