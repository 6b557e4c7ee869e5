// Package resolver 是通讯录的客户端编排：把两种历史字段命名的联系人统一成 model.Contact，
// 推导去重后的地点列表，并以防抖的方式驱动网关搜索。
package resolver

import (
	"invitegen/internal/model"
)

// RawCompany 旧接口里嵌套的公司对象
type RawCompany struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// RawContact 网关返回的联系人，两种命名都可能出现，也可能只出现一种
type RawContact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	// 搜索接口的命名
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	ContactAddress1 string `json:"contactAddress1"`
	ContactCity     string `json:"contactCity"`
	ContactState    string `json:"contactState"`
	ContactZip      string `json:"contactZip"`
	CompanyName     string `json:"companyName"`
	CompanyAddress  string `json:"companyAddress"`
	CompanyAddress1 string `json:"companyAddress1"`
	CompanyCity     string `json:"companyCity"`
	CompanyState    string `json:"companyState"`
	CompanyZip      string `json:"companyZip"`

	// 全量列表接口的旧命名
	LegacyFirstName string      `json:"firstname"`
	LegacyLastName  string      `json:"lastname"`
	Address         string      `json:"address"`
	City            string      `json:"city"`
	State           string      `json:"state"`
	Zip             string      `json:"zip"`
	Company         *RawCompany `json:"company"`
	CompanyLocation string      `json:"companyLocation"`
}

// Normalize 合并两种命名，两者都有值时旧命名优先
func Normalize(raw RawContact) model.Contact {
	c := model.Contact{
		ID:        raw.ID,
		FirstName: firstNonEmpty(raw.LegacyFirstName, raw.FirstName),
		LastName:  firstNonEmpty(raw.LegacyLastName, raw.LastName),
		Email:     raw.Email,
		Phone:     raw.Phone,
		Address: model.Address{
			Street: firstNonEmpty(raw.Address, raw.ContactAddress1),
			City:   firstNonEmpty(raw.City, raw.ContactCity),
			State:  firstNonEmpty(raw.State, raw.ContactState),
			Zip:    firstNonEmpty(raw.Zip, raw.ContactZip),
		},
		CompanyLocation: raw.CompanyLocation,
		CompanyAddress:  raw.CompanyAddress,
	}

	switch {
	case raw.Company != nil:
		c.Company = &model.Organization{
			ID:   raw.Company.ID,
			Name: raw.Company.Name,
			Address: model.Address{
				Street: raw.Company.Address,
				City:   raw.Company.City,
				State:  raw.Company.State,
				Zip:    raw.Company.Zip,
			},
			Country: raw.Company.Country,
		}
	case raw.CompanyAddress1 != "" || raw.CompanyCity != "" || raw.CompanyState != "" || raw.CompanyZip != "":
		c.Company = &model.Organization{
			Name: raw.CompanyName,
			Address: model.Address{
				Street: raw.CompanyAddress1,
				City:   raw.CompanyCity,
				State:  raw.CompanyState,
				Zip:    raw.CompanyZip,
			},
		}
	}

	if c.Company != nil {
		c.CompanyName = firstNonEmpty(c.Company.Name, raw.CompanyName)
	} else {
		c.CompanyName = raw.CompanyName
	}

	return c
}

func NormalizeAll(raws []RawContact) []model.Contact {
	out := make([]model.Contact, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
