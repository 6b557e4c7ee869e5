package utils

import (
	"time"
)

// ParseTime 解析时间字符串（HH:MM 或 HH:MM:SS）并应用到指定日期
func ParseTime(timeStr string, date time.Time) (time.Time, error) {
	if timeStr == "" {
		return date, nil
	}

	layout := "15:04"
	if len(timeStr) > len(layout) {
		layout = "15:04:05"
	}

	parsedTime, err := time.Parse(layout, timeStr)
	if err != nil {
		return date, err
	}

	return time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		parsedTime.Hour(),
		parsedTime.Minute(),
		parsedTime.Second(),
		0,
		date.Location(),
	), nil
}

// ParseDateTime 把表单的日期（YYYY-MM-DD）和时间（HH:MM）组合成 loc 时区下的时间点
func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, err
	}
	return ParseTime(timeStr, date)
}
