package formatter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"invitegen/internal/model"
	"invitegen/utils"
)

// MaxOccurrences 展开的上限
const MaxOccurrences = 100

var (
	ErrNotRecurring = errors.New("template is not recurring")
	ErrMissingStart = errors.New("template has no date or time")
)

var weekdayCodes = map[string]string{
	"Mon": "MO",
	"Tue": "TU",
	"Wed": "WE",
	"Thu": "TH",
	"Fri": "FR",
	"Sat": "SA",
	"Sun": "SU",
}

// BuildRRule 生成 RFC 5545 的 RRULE 值（不含 "RRULE:" 前缀）。
// 结束日期和次数同时存在时只输出 UNTIL，结束日期当天整天都算在内
func BuildRRule(p *model.RecurringPattern, loc *time.Location) (string, bool) {
	if !p.Active() {
		return "", false
	}

	parts := []string{"FREQ=" + strings.ToUpper(string(p.Frequency))}

	if p.Frequency == model.FrequencyWeekly && len(p.DaysOfWeek) > 0 {
		days := make([]string, 0, len(p.DaysOfWeek))
		for _, d := range p.DaysOfWeek {
			if code, ok := weekdayCodes[d]; ok {
				days = append(days, code)
			}
		}
		if len(days) > 0 {
			parts = append(parts, "BYDAY="+strings.Join(days, ","))
		}
	}

	if until, ok := endOfDay(p.EndDate, loc); ok {
		parts = append(parts, "UNTIL="+until.UTC().Format("20060102T150405Z"))
	} else if p.Occurrences > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(p.Occurrences))
	}

	return strings.Join(parts, ";"), true
}

func endOfDay(date string, loc *time.Location) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d.Add(24*time.Hour - time.Second), true
}

// ExpandOccurrences 展开重复事件的开始时间，最多 limit 个；
// 没有结束条件或超过 limit 时 truncated 为 true
func ExpandOccurrences(t *model.EventTemplate, opts Options, limit int) (occurrences []time.Time, truncated bool, err error) {
	if limit <= 0 || limit > MaxOccurrences {
		limit = MaxOccurrences
	}
	if t.Date == "" || t.Time == "" {
		return nil, false, ErrMissingStart
	}

	start, err := utils.ParseDateTime(t.Date, t.Time, opts.location())
	if err != nil {
		return nil, false, fmt.Errorf("invalid start: %w", err)
	}

	rule, ok := BuildRRule(t.Recurring, opts.location())
	if !ok {
		return nil, false, ErrNotRecurring
	}

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse rrule %q: %w", rule, err)
	}
	opt.Dtstart = start

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build rrule: %w", err)
	}

	// 逐个取，多取一个用于判断是否截断；UNTIL 再远也只走 limit+1 步
	next := r.Iterator()
	occurrences = make([]time.Time, 0, limit)
	for {
		occ, ok := next()
		if !ok {
			return occurrences, false, nil
		}
		if len(occurrences) == limit {
			return occurrences, true, nil
		}
		occurrences = append(occurrences, occ)
	}
}

// StartTime 模板的开始时间
func StartTime(t *model.EventTemplate, opts Options) (time.Time, error) {
	if t.Date == "" || t.Time == "" {
		return time.Time{}, ErrMissingStart
	}
	return utils.ParseDateTime(t.Date, t.Time, opts.location())
}
