package dto

// ========== 通讯录（Directory Gateway）相关 DTO ==========

// SearchRequest 搜索请求，searchType 缺省或无法识别时按 name 处理
type SearchRequest struct {
	Query      string `json:"query"`
	SearchType string `json:"searchType"`
}

// DirectoryContact 搜索结果中的扁平联系人，地址片段既单独给出也给出拼接后的结果
type DirectoryContact struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	ContactAddress  string `json:"contactAddress"`
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
}

// SearchResponse 搜索响应
type SearchResponse struct {
	Results []DirectoryContact `json:"results"`
	Total   int                `json:"total"`
}

// CompanyRecord 全量列表中嵌套的公司信息
type CompanyRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// ListContact 全量列表中的联系人，沿用旧的小写字段命名
type ListContact struct {
	ID              string         `json:"id"`
	FirstName       string         `json:"firstname"`
	LastName        string         `json:"lastname"`
	Email           string         `json:"email"`
	Address         string         `json:"address"`
	City            string         `json:"city"`
	State           string         `json:"state"`
	Zip             string         `json:"zip"`
	Company         *CompanyRecord `json:"company"`
	CompanyLocation string         `json:"companyLocation"`
}

// ListResponse 全量列表响应
type ListResponse struct {
	Contacts []ListContact `json:"contacts"`
}
