// Package formatter 把 EventTemplate 渲染成可分享的文本、RRULE 和 iCalendar，纯函数，无副作用。
package formatter

import (
	"strconv"
	"strings"
	"time"

	"invitegen/internal/model"
	"invitegen/utils"
)

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━"

// Options 渲染参数
type Options struct {
	Location  *time.Location
	ZoneLabel string // 时间后面追加的时区标记，如 PST
}

// DefaultOptions 美西时间，标记为 PST
func DefaultOptions() Options {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		loc = time.UTC
	}
	return Options{Location: loc, ZoneLabel: "PST"}
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// FormatEventText 生成邀请文本。标题、日期、时间任一缺失或无法解析时返回空串
func FormatEventText(t *model.EventTemplate, opts Options) string {
	if t == nil || t.Title == "" || t.Date == "" || t.Time == "" {
		return ""
	}

	start, err := utils.ParseDateTime(t.Date, t.Time, opts.location())
	if err != nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("📅 **EVENT INVITATION**\n\n")
	sb.WriteString(separator + "\n\n")
	sb.WriteString("🎯 **Event:** " + t.Title + "\n\n")
	sb.WriteString("📆 **Date:** " + start.Format("Monday, January 2, 2006") + "\n")
	sb.WriteString("🕐 **Time:** " + start.Format("3:04 PM"))
	if opts.ZoneLabel != "" {
		sb.WriteString(" " + opts.ZoneLabel)
	}
	sb.WriteString("\n\n")
	sb.WriteString("📍 **Location:** " + t.Location + "\n")

	if t.Goal != "" {
		sb.WriteString("\n🎯 **Goal:** " + t.Goal)
	}
	if t.Agenda != "" {
		sb.WriteString("\n\n📋 **Agenda:**\n" + t.Agenda)
	}
	if t.RSVP != "" {
		sb.WriteString("\n\n👥 **RSVP:** " + t.RSVP)
	}

	if line, ok := recurringLine(t.Recurring); ok {
		sb.WriteString("\n\n🔄 **Recurring:** " + line)
	}

	sb.WriteString("\n\n" + separator + "\n\n")
	sb.WriteString("Please confirm your attendance. Looking forward to seeing you there!")

	return sb.String()
}

// recurringLine "Weekly on Mon, Wed until April 30, 2024"；结束日期优先于次数
func recurringLine(p *model.RecurringPattern) (string, bool) {
	if !p.Active() {
		return "", false
	}

	var line string
	switch p.Frequency {
	case model.FrequencyDaily:
		line = "Daily"
	case model.FrequencyWeekly:
		line = "Weekly"
		if len(p.DaysOfWeek) > 0 {
			line += " on " + strings.Join(p.DaysOfWeek, ", ")
		}
	case model.FrequencyMonthly:
		line = "Monthly"
	}

	if p.EndDate != "" {
		if end, err := time.Parse("2006-01-02", p.EndDate); err == nil {
			line += " until " + end.Format("January 2, 2006")
		}
	} else if p.Occurrences > 0 {
		line += " for " + strconv.Itoa(p.Occurrences) + " occurrences"
	}

	return line, true
}
