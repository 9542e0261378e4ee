package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable events triggered from the admin console.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Actor      string            `gorm:"size:160;not null;index" json:"actor"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityRef  string            `gorm:"size:64" json:"entity_ref"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
