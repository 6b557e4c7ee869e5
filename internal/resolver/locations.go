package resolver

import (
	"sort"
	"strings"

	"invitegen/internal/model"
	"invitegen/utils"
)

// UniqueLocations 所有联系人的去重地点，按字典序排列。
// 来源：联系人自己的地址、companyLocation、companyAddress、公司对象的地址
func UniqueLocations(contacts []model.Contact) []string {
	seen := make(map[string]struct{})
	add := func(loc string) {
		if loc != "" {
			seen[loc] = struct{}{}
		}
	}

	for _, c := range contacts {
		add(c.Address.Location())
		add(c.CompanyLocation)
		add(c.CompanyAddress)
		if c.Company != nil {
			add(c.Company.Address.Location())
		}
	}

	out := make([]string, 0, len(seen))
	for loc := range seen {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// FilterLocal 本地子串过滤：全名、邮箱、公司名，不区分大小写，不拆分姓名
func FilterLocal(contacts []model.Contact, query string) []model.Contact {
	q := strings.TrimSpace(query)

	out := make([]model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if q == "" || matches(c, q) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c model.Contact, q string) bool {
	return utils.ContainsFold(c.FullName(), q) ||
		utils.ContainsFold(c.Email, q) ||
		utils.ContainsFold(c.CompanyName, q)
}
