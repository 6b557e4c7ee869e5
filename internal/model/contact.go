package model

import "strings"

// SearchType 通讯录搜索类型
type SearchType string

const (
	SearchTypeName    SearchType = "name"
	SearchTypeEmail   SearchType = "email"
	SearchTypePhone   SearchType = "phone"
	SearchTypeCompany SearchType = "company"
)

// ParseSearchType 解析搜索类型，空值按 name 处理
func ParseSearchType(s string) (SearchType, bool) {
	switch SearchType(strings.ToLower(strings.TrimSpace(s))) {
	case "", SearchTypeName:
		return SearchTypeName, true
	case SearchTypeEmail:
		return SearchTypeEmail, true
	case SearchTypePhone:
		return SearchTypePhone, true
	case SearchTypeCompany:
		return SearchTypeCompany, true
	default:
		return "", false
	}
}

// Address 地址片段，全部可选
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// Location 拼接成展示用的地点字符串
func (a Address) Location() string {
	return JoinLocation(a.Street, a.City, a.State, a.Zip)
}

// Organization 联系人关联的公司，一个联系人只保留第一个关联
type Organization struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Address Address `json:"address"`
	Country string  `json:"country,omitempty"`
}

// Contact 统一后的联系人结构，两种历史字段命名在入口处已被合并
type Contact struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone,omitempty"`
	Address   Address `json:"address"`

	Company     *Organization `json:"company,omitempty"`
	CompanyName string        `json:"companyName,omitempty"`
	// CompanyLocation / CompanyAddress 网关已拼好的公司地点，两种接口各给一个
	CompanyLocation string `json:"companyLocation,omitempty"`
	CompanyAddress  string `json:"companyAddress,omitempty"`
}

// FullName 名 + 姓，空格连接
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// KnownLocation 选中联系人时用于自动填充的地点：公司地点优先，其次联系人自己的地址
func (c Contact) KnownLocation() string {
	if c.CompanyLocation != "" {
		return c.CompanyLocation
	}
	if c.CompanyAddress != "" {
		return c.CompanyAddress
	}
	if c.Company != nil {
		if loc := c.Company.Address.Location(); loc != "" {
			return loc
		}
	}
	return c.Address.Location()
}

// JoinLocation 用 ", " 连接非空片段
func JoinLocation(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
