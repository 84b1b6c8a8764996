package models

import "HelpBeacon/pkg/geo"

const (
	DefaultDisplayName = "Guest user"
	DefaultProfession  = "Citizen"
)

// PresenceRecord 设备最近一次上报的位置，每个 ID 只保留一条
type PresenceRecord struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Profession string  `json:"profession"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	LastSeen   int64   `json:"lastSeen"`
}

func (p PresenceRecord) Point() geo.Point {
	return geo.Point{Lat: p.Latitude, Lng: p.Longitude}
}

// NearbyUser 附近用户查询结果
type NearbyUser struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Profession string  `json:"profession"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distanceKm"`
}

// PresenceReport POST /presence 请求体
type PresenceReport struct {
	ID         string   `json:"id" binding:"required"`
	Name       string   `json:"name"`
	Profession string   `json:"profession"`
	Latitude   *float64 `json:"latitude" binding:"required"`
	Longitude  *float64 `json:"longitude" binding:"required"`
}

// NearbyQuery is the parsed form of the lat/lng/radiusKm query parameters
// shared by every proximity endpoint.
type NearbyQuery struct {
	Center    geo.Point
	RadiusKm  float64
	ExcludeID string
}
