package models

const DefaultDirectSenderName = "User"

// DirectMessage 求助警报下的私聊消息。AlertID 只是逻辑引用，不校验警报是否存在
type DirectMessage struct {
	ID        string `json:"id"`
	AlertID   string `json:"alertId"`
	FromID    string `json:"fromId"`
	FromName  string `json:"fromName"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// DirectMessageForm POST /help-alerts/:id/messages 请求体
type DirectMessageForm struct {
	FromID   string `json:"fromId" binding:"required"`
	FromName string `json:"fromName"`
	Text     string `json:"text" binding:"required"`
}
