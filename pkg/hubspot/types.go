package hubspot

// OperatorContainsToken 大小写不敏感的 token 包含匹配，所有过滤条件都使用它
const OperatorContainsToken = "CONTAINS_TOKEN"

// 请求中使用的属性投影
var (
	SearchProperties  = []string{"firstname", "lastname", "email", "phone", "address", "city", "state", "zip", "company"}
	ListProperties    = []string{"firstname", "lastname", "email", "address", "city", "state", "zip"}
	CompanyProperties = []string{"name", "address", "city", "state", "zip", "country"}
)

const (
	SearchLimit = 50
	ListLimit   = 100
)

// Filter 单个过滤条件
type Filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

// FilterGroup 组内条件为 AND，组与组之间为 OR
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// SearchRequest POST /crm/v3/objects/contacts/search 的请求体
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
}

// ListOptions GET /crm/v3/objects/contacts 的查询参数
type ListOptions struct {
	Properties   []string
	Associations []string
	Limit        int
}

// AssociationRef 关联对象引用
type AssociationRef struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

type AssociationList struct {
	Results []AssociationRef `json:"results"`
}

// Object CRM 对象（联系人或公司），属性值都是字符串
type Object struct {
	Properties   map[string]string          `json:"properties"`
	Associations map[string]AssociationList `json:"associations,omitempty"`
	ID           string                     `json:"id"`
}

// Prop 读取属性，缺失时为空串
func (o Object) Prop(name string) string {
	return o.Properties[name]
}

// FirstAssociation 返回指定类型的第一个关联 ID，其余关联忽略
func (o Object) FirstAssociation(kind string) (string, bool) {
	list, ok := o.Associations[kind]
	if !ok || len(list.Results) == 0 || list.Results[0].ID == "" {
		return "", false
	}
	return list.Results[0].ID, true
}

// ObjectPage 搜索、列表、批量读取的统一响应
type ObjectPage struct {
	Results []Object `json:"results"`
	Total   int      `json:"total,omitempty"`
}

type BatchInput struct {
	ID string `json:"id"`
}

// BatchReadRequest POST /crm/v3/objects/companies/batch/read 的请求体
type BatchReadRequest struct {
	Properties []string     `json:"properties"`
	Inputs     []BatchInput `json:"inputs"`
}

// NewBatchReadRequest 根据 ID 列表构造批量读取请求
func NewBatchReadRequest(ids, properties []string) BatchReadRequest {
	inputs := make([]BatchInput, 0, len(ids))
	for _, id := range ids {
		inputs = append(inputs, BatchInput{ID: id})
	}
	return BatchReadRequest{Properties: properties, Inputs: inputs}
}
