package models

import "HelpBeacon/pkg/geo"

// PublicMessage 公共聊天消息，位置为发送时的快照
type PublicMessage struct {
	ID         string  `json:"id"`
	FromID     string  `json:"fromId"`
	FromName   string  `json:"fromName"`
	Profession string  `json:"profession"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Text       string  `json:"text"`
	CreatedAt  int64   `json:"createdAt"`
}

func (m PublicMessage) Point() geo.Point {
	return geo.Point{Lat: m.Latitude, Lng: m.Longitude}
}

// PublicMessageForm POST /messages 请求体
type PublicMessageForm struct {
	FromID     string   `json:"fromId" binding:"required"`
	FromName   string   `json:"fromName"`
	Profession string   `json:"profession"`
	Latitude   *float64 `json:"latitude" binding:"required"`
	Longitude  *float64 `json:"longitude" binding:"required"`
	Text       string   `json:"text" binding:"required"`
}
