package models

import "HelpBeacon/pkg/geo"

const (
	DefaultAlertType  = "HELP"
	DefaultHelperName = "Helper"
)

// AlertStatus is derived from the acceptance fields, never stored.
type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "open"
	AlertStatusAccepted AlertStatus = "accepted"
)

// HelpAlert 求助警报。接受信息在被接受之前均为 null
type HelpAlert struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Message   string  `json:"message"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	FromID    string  `json:"fromId"`
	FromName  string  `json:"fromName"`
	Phone     *string `json:"phone"`
	CreatedAt int64   `json:"createdAt"`

	AcceptedByID    *string `json:"acceptedById"`
	AcceptedByName  *string `json:"acceptedByName"`
	AcceptedByPhone *string `json:"acceptedByPhone"`
	AcceptedAt      *int64  `json:"acceptedAt"`
}

func (a HelpAlert) Point() geo.Point {
	return geo.Point{Lat: a.Latitude, Lng: a.Longitude}
}

func (a HelpAlert) Status() AlertStatus {
	if a.AcceptedByID != nil {
		return AlertStatusAccepted
	}
	return AlertStatusOpen
}

// HelpAlertForm POST /help-alerts 请求体
type HelpAlertForm struct {
	FromID    string   `json:"fromId" binding:"required"`
	FromName  string   `json:"fromName"`
	Phone     string   `json:"phone"`
	Type      string   `json:"type"`
	Message   string   `json:"message" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// AcceptForm POST /help-alerts/:id/accept 请求体
type AcceptForm struct {
	HelperID    string `json:"helperId" binding:"required"`
	HelperName  string `json:"helperName"`
	HelperPhone string `json:"helperPhone"`
}

// OptionalString maps "" to nil so absent optional fields serialise as null.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
