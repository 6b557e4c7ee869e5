package service

import (
	"strings"

	"invitegen/internal/model"
	"invitegen/pkg/hubspot"
	"invitegen/utils"
)

func containsToken(property, value string) hubspot.Filter {
	return hubspot.Filter{PropertyName: property, Operator: hubspot.OperatorContainsToken, Value: value}
}

func group(filters ...hubspot.Filter) hubspot.FilterGroup {
	return hubspot.FilterGroup{Filters: filters}
}

// BuildFilterGroups 根据搜索类型构造过滤组，组之间是 OR，组内是 AND。
//
// name 类型下，两个及以上 token 时第一个 token 和剩余部分分别尝试 名/姓 两种顺序，
// 因为上游并不能可靠区分哪个是名；单个 token 时在名和姓上各匹配一次。
// phone 类型只保留查询中的数字，存储的号码原样参与匹配。
func BuildFilterGroups(query string, searchType model.SearchType) []hubspot.FilterGroup {
	switch searchType {
	case model.SearchTypeEmail:
		return []hubspot.FilterGroup{group(containsToken("email", query))}
	case model.SearchTypePhone:
		return []hubspot.FilterGroup{group(containsToken("phone", utils.DigitsOnly(query)))}
	case model.SearchTypeCompany:
		return []hubspot.FilterGroup{group(containsToken("company", query))}
	}

	tokens := strings.Fields(query)
	if len(tokens) >= 2 {
		first := tokens[0]
		rest := strings.Join(tokens[1:], " ")
		return []hubspot.FilterGroup{
			group(containsToken("firstname", first), containsToken("lastname", rest)),
			group(containsToken("firstname", rest), containsToken("lastname", first)),
		}
	}

	return []hubspot.FilterGroup{
		group(containsToken("firstname", query)),
		group(containsToken("lastname", query)),
	}
}
