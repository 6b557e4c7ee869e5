package utils

import (
	"regexp"
	"strings"
)

var (
	nonDigit  = regexp.MustCompile(`\D`)
	clockExpr = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// DigitsOnly 去掉所有非数字字符，"(555) 123-4567" -> "5551234567"
func DigitsOnly(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// ValidateClock 校验 24 小时制 HH:MM
func ValidateClock(s string) bool {
	return clockExpr.MatchString(s)
}

// ContainsFold 大小写不敏感的子串匹配
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
