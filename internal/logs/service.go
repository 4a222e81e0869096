package logs

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"safety-forms-api/internal/util"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const aggregateLimit = 12

type LogService struct {
	DB *gorm.DB
}

func (ls *LogService) Log(log SystemLog, metadata interface{}) error {
	var metaStr *string

	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			str := string(b)
			metaStr = &str
		}
	}

	newLog := SystemLog{
		Level:     log.Level,
		Service:   log.Service,
		UserID:    log.UserID,
		Action:    log.Action,
		Message:   log.Message,
		FormID:    log.FormID,
		Roles:     log.Roles,
		Metadata:  metaStr,
		CreatedAt: time.Now(),
	}

	return ls.DB.Create(&newLog).Error
}

func (ls *LogService) GetLogs(input LogFilterInput) ([]SystemLog, LogAggregates, int64, int, error) {
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 || input.PageSize > 100 {
		input.PageSize = 20
	}

	base := ls.DB.Model(&SystemLog{})

	// last 30 days unless a range is given
	if input.StartDate == nil && input.EndDate == nil {
		base = base.Where("logs.created_at >= ?", time.Now().AddDate(0, 0, -30))
	}

	if input.UserID != nil {
		base = base.Where("logs.user_id = ?", *input.UserID)
	}
	for _, f := range []struct {
		col string
		val *string
	}{
		{"logs.level", input.Level},
		{"logs.service", input.Service},
		{"logs.action", input.Action},
		{"logs.form_id", input.FormID},
	} {
		if f.val != nil && strings.TrimSpace(*f.val) != "" {
			base = base.Where(f.col+" = ?", strings.TrimSpace(*f.val))
		}
	}

	// any-overlap on roles
	if len(input.Roles) > 0 {
		base = base.Where("logs.roles && ?", pq.Array(input.Roles))
	}

	dr, err := util.ParseDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}
	if dr.HasStart {
		base = base.Where("logs.created_at >= ?", dr.Start)
	}
	if dr.HasEnd {
		base = base.Where("logs.created_at < ?", dr.End)
	}

	if input.Search != nil && strings.TrimSpace(*input.Search) != "" {
		like := "%" + strings.TrimSpace(*input.Search) + "%"
		base = base.Where(
			`logs.level ILIKE ?
			 OR logs.service ILIKE ?
			 OR logs.action ILIKE ?
			 OR logs.message ILIKE ?
			 OR COALESCE(logs.form_id,'') ILIKE ?`,
			like, like, like, like, like,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(input.PageSize)))
	if totalPages == 0 {
		totalPages = 1
	}

	var rows []SystemLog
	if err := base.
		Session(&gorm.Session{}).
		Order("logs.created_at DESC").
		Limit(input.PageSize).
		Offset((input.Page - 1) * input.PageSize).
		Find(&rows).Error; err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	aggs, err := ls.aggregates(base)
	if err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	return rows, aggs, total, totalPages, nil
}

func (ls *LogService) aggregates(base *gorm.DB) (LogAggregates, error) {
	count := func(expr string) ([]AggItem, error) {
		var out []AggItem
		err := base.Session(&gorm.Session{}).
			Select(expr + " AS label, COUNT(*) AS count").
			Group("label").
			Order("count DESC").
			Limit(aggregateLimit).
			Scan(&out).Error
		if out == nil {
			out = []AggItem{}
		}
		return out, err
	}

	byAction, err := count("logs.action")
	if err != nil {
		return LogAggregates{}, err
	}
	byForm, err := count("COALESCE(NULLIF(TRIM(logs.form_id), ''), 'No form')")
	if err != nil {
		return LogAggregates{}, err
	}
	return LogAggregates{ByAction: byAction, ByForm: byForm}, nil
}
