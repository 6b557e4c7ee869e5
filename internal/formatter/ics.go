package formatter

import (
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"invitegen/internal/model"
	"invitegen/utils"
)

// 表单里没有时长，导出时默认一小时
const defaultEventDuration = time.Hour

// ICSOptions iCalendar 导出参数
type ICSOptions struct {
	Options
	ProductID string
	Organizer string
	Now       time.Time
}

// BuildICS 导出单个 VEVENT 的日历。参会人取自 RSVP 字段中的邮箱
func BuildICS(t *model.EventTemplate, opts ICSOptions) (string, error) {
	if t.Date == "" || t.Time == "" {
		return "", ErrMissingStart
	}

	start, err := utils.ParseDateTime(t.Date, t.Time, opts.location())
	if err != nil {
		return "", err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	productID := opts.ProductID
	if productID == "" {
		productID = "-//invitegen//Event Invitation//EN"
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodRequest)
	cal.SetProductId(productID)

	event := cal.AddEvent(strconv.FormatInt(t.ID, 10) + "@invitegen")
	event.SetDtStampTime(now)
	if !t.CreatedAt.IsZero() {
		event.SetCreatedTime(t.CreatedAt)
	}
	event.SetStartAt(start)
	event.SetEndAt(start.Add(defaultEventDuration))
	event.SetSummary(t.Title)
	if t.Location != "" {
		event.SetLocation(t.Location)
	}
	if desc := description(t); desc != "" {
		event.SetDescription(desc)
	}
	if opts.Organizer != "" {
		event.SetOrganizer(opts.Organizer)
	}

	for _, email := range Attendees(t.RSVP) {
		event.AddAttendee(email,
			ical.CalendarUserTypeIndividual,
			ical.ParticipationStatusNeedsAction,
			ical.ParticipationRoleReqParticipant,
			ical.WithRSVP(true),
		)
	}

	if rule, ok := BuildRRule(t.Recurring, opts.location()); ok {
		event.AddProperty(ical.ComponentPropertyRrule, rule)
	}

	return cal.Serialize(), nil
}

func description(t *model.EventTemplate) string {
	parts := make([]string, 0, 2)
	if t.Goal != "" {
		parts = append(parts, "Goal: "+t.Goal)
	}
	if t.Agenda != "" {
		parts = append(parts, "Agenda:\n"+t.Agenda)
	}
	return strings.Join(parts, "\n\n")
}

// Attendees 从 "a@x.com, b@y.com" 形式的字符串中取出邮箱，跳过不像邮箱的片段
func Attendees(rsvp string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(rsvp, ",") {
		email := strings.TrimSpace(part)
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		out = append(out, email)
	}
	return out
}
