package queue

// TemplateSavedMessage 模板保存事件，worker 据此预渲染文本预览
type TemplateSavedMessage struct {
	MessageID  string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	SavedAt    string `json:"saved_at"`
	TemplateID int64  `json:"template_id,string"`
}
