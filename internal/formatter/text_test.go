package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"invitegen/internal/model"
)

func sampleTemplate() *model.EventTemplate {
	return &model.EventTemplate{
		Title:    "Team Sync",
		Date:     "2024-03-15",
		Time:     "14:30",
		Location: "HQ",
		Goal:     "Plan Q2",
		Agenda:   "1. Intro\n2. Roadmap",
		RSVP:     "a@x.com",
		Recurring: &model.RecurringPattern{
			Enabled:     true,
			Frequency:   model.FrequencyWeekly,
			DaysOfWeek:  []string{"Mon", "Wed"},
			EndDate:     "2024-04-30",
			Occurrences: 5,
		},
	}
}

func TestFormatEventTextFull(t *testing.T) {
	want := "📅 **EVENT INVITATION**\n\n" +
		separator + "\n\n" +
		"🎯 **Event:** Team Sync\n\n" +
		"📆 **Date:** Friday, March 15, 2024\n" +
		"🕐 **Time:** 2:30 PM PST\n\n" +
		"📍 **Location:** HQ\n" +
		"\n🎯 **Goal:** Plan Q2" +
		"\n\n📋 **Agenda:**\n1. Intro\n2. Roadmap" +
		"\n\n👥 **RSVP:** a@x.com" +
		"\n\n🔄 **Recurring:** Weekly on Mon, Wed until April 30, 2024" +
		"\n\n" + separator + "\n\n" +
		"Please confirm your attendance. Looking forward to seeing you there!"

	assert.Equal(t, want, FormatEventText(sampleTemplate(), DefaultOptions()))
}

func TestFormatEventTextMinimal(t *testing.T) {
	tpl := &model.EventTemplate{Title: "Lunch", Date: "2024-06-03", Time: "09:05"}
	text := FormatEventText(tpl, DefaultOptions())

	assert.Contains(t, text, "📆 **Date:** Monday, June 3, 2024\n")
	assert.Contains(t, text, "🕐 **Time:** 9:05 AM PST\n")
	assert.Contains(t, text, "📍 **Location:** \n\n"+separator)
	assert.NotContains(t, text, "Goal")
	assert.NotContains(t, text, "Agenda")
	assert.NotContains(t, text, "RSVP")
	assert.NotContains(t, text, "Recurring")
}

func TestFormatEventTextRequiresTitleDateTime(t *testing.T) {
	base := model.EventTemplate{Title: "x", Date: "2024-06-03", Time: "09:00"}

	for _, mutate := range []func(*model.EventTemplate){
		func(e *model.EventTemplate) { e.Title = "" },
		func(e *model.EventTemplate) { e.Date = "" },
		func(e *model.EventTemplate) { e.Time = "" },
		func(e *model.EventTemplate) { e.Date = "June 3" },
		func(e *model.EventTemplate) { e.Time = "noon" },
	} {
		tpl := base
		mutate(&tpl)
		assert.Equal(t, "", FormatEventText(&tpl, DefaultOptions()))
	}
	assert.Equal(t, "", FormatEventText(nil, DefaultOptions()))
}

func TestRecurringLine(t *testing.T) {
	tests := []struct {
		name    string
		pattern *model.RecurringPattern
		want    string
	}{
		{"daily with count", &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyDaily, Occurrences: 3}, "Daily for 3 occurrences"},
		{"weekly no days", &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyWeekly}, "Weekly"},
		{"monthly open ended", &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyMonthly}, "Monthly"},
		{"end date wins", &model.RecurringPattern{Enabled: true, Frequency: model.FrequencyDaily, EndDate: "2024-12-01", Occurrences: 9}, "Daily until December 1, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := recurringLine(tt.pattern)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := recurringLine(&model.RecurringPattern{Enabled: false, Frequency: model.FrequencyDaily})
	assert.False(t, ok)
	_, ok = recurringLine(&model.RecurringPattern{Enabled: true})
	assert.False(t, ok)
	_, ok = recurringLine(nil)
	assert.False(t, ok)
}

func TestZoneLabelOptional(t *testing.T) {
	text := FormatEventText(&model.EventTemplate{Title: "x", Date: "2024-06-03", Time: "18:00"}, Options{})
	assert.True(t, strings.Contains(text, "🕐 **Time:** 6:00 PM\n"))
}
