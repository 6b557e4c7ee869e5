package model

// Frequency 重复频率
type Frequency string

const (
	FrequencyNone    Frequency = ""
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Weekdays 表单中可选的星期，顺序即展示顺序
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// RecurringPattern 重复规则。EndDate 和 Occurrences 可能同时有值，
// 此时以 EndDate 为准（文本渲染、RRULE、展开都遵循这一规则）
type RecurringPattern struct {
	Enabled     bool      `json:"enabled"`
	Frequency   Frequency `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
	DaysOfWeek  []string  `json:"daysOfWeek,omitempty" validate:"omitempty,dive,weekday"`
	EndDate     string    `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Occurrences int       `json:"occurrences,omitempty" validate:"gte=0,lte=1000"`
}

// Active 开启且选择了频率才算重复事件
func (p *RecurringPattern) Active() bool {
	return p != nil && p.Enabled && p.Frequency != FrequencyNone
}

// EventTemplate 保存的表单快照
type EventTemplate struct {
	BaseModel

	Title    string `gorm:"type:text;not null" json:"title"`
	Date     string `gorm:"type:varchar(10)" json:"date"` // YYYY-MM-DD
	Time     string `gorm:"type:varchar(5)" json:"time"`  // HH:MM，24 小时制
	Location string `gorm:"type:text" json:"location"`
	Goal     string `gorm:"type:text" json:"goal,omitempty"`
	Agenda   string `gorm:"type:text" json:"agenda"`
	RSVP     string `gorm:"column:rsvp;type:text" json:"rsvp"`

	Recurring *RecurringPattern `gorm:"serializer:json;type:jsonb" json:"recurring,omitempty"`
}

func (EventTemplate) TableName() string {
	return "event_templates"
}
