package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is one node of the catalog's parent-pointer tree. A nil ParentID
// marks a root category.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	Name      string     `gorm:"column:name;not null"`
	Status    bool       `gorm:"column:status;not null;default:true"`
	SortOrder int        `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
