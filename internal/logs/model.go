package logs

import (
	"time"

	"github.com/lib/pq"
)

type SystemLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Level     string         `gorm:"size:20;not null" json:"level"`
	Service   string         `gorm:"size:100;not null" json:"service"`
	UserID    *uint          `gorm:"index" json:"user_id,omitempty"`
	Action    string         `gorm:"size:255;not null" json:"action"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	FormID    *string        `gorm:"size:64;index" json:"form_id,omitempty"`
	Roles     pq.StringArray `gorm:"type:text[];column:roles" json:"roles"`
	Metadata  *string        `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (SystemLog) TableName() string {
	return "logs"
}

type LogFilterInput struct {
	UserID  *uint    `form:"user_id"`
	Level   *string  `form:"level"`
	Service *string  `form:"service"`
	Action  *string  `form:"action"`
	FormID  *string  `form:"form_id"`
	Roles   []string `form:"-"`

	StartDate *string `form:"start_date"` // YYYY-MM-DD or RFC3339
	EndDate   *string `form:"end_date"`

	Search   *string `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

type AggItem struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type LogAggregates struct {
	ByAction []AggItem `json:"by_action"`
	ByForm   []AggItem `json:"by_form"`
}
