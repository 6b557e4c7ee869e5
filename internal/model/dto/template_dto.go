package dto

import (
	"time"

	"invitegen/internal/model"
)

// ========== 模板相关 DTO ==========

// SaveTemplateRequest 保存模板请求，也用于未保存表单的预览
type SaveTemplateRequest struct {
	Title     string                  `json:"title" validate:"required,max=200"`
	Date      string                  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time      string                  `json:"time" validate:"omitempty,clock"`
	Location  string                  `json:"location" validate:"max=500"`
	Goal      string                  `json:"goal" validate:"max=2000"`
	Agenda    string                  `json:"agenda" validate:"max=5000"`
	RSVP      string                  `json:"rsvp" validate:"max=5000"`
	Recurring *model.RecurringPattern `json:"recurring,omitempty" validate:"omitempty"`
}

// ToModel 转换成未持久化的模板
func (r *SaveTemplateRequest) ToModel() *model.EventTemplate {
	return &model.EventTemplate{
		Title:     r.Title,
		Date:      r.Date,
		Time:      r.Time,
		Location:  r.Location,
		Goal:      r.Goal,
		Agenda:    r.Agenda,
		RSVP:      r.RSVP,
		Recurring: r.Recurring,
	}
}

// TemplateItem 模板响应
type TemplateItem struct {
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	Recurring *model.RecurringPattern `json:"recurring,omitempty"`
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Date      string                  `json:"date"`
	Time      string                  `json:"time"`
	Location  string                  `json:"location"`
	Goal      string                  `json:"goal,omitempty"`
	Agenda    string                  `json:"agenda"`
	RSVP      string                  `json:"rsvp"`
}

// PreviewResponse 文本预览
type PreviewResponse struct {
	Text string `json:"text"`
}

// OccurrencesResponse 展开后的重复日期（YYYY-MM-DD HH:MM，按邀请时区）
type OccurrencesResponse struct {
	Occurrences []string `json:"occurrences"`
	Truncated   bool     `json:"truncated"`
}
