// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// MatchRecord 对局记录模型
type MatchRecord struct {
	gorm.Model
	RoomName string                 `gorm:"index;not null"`
	Players  map[string]interface{} `gorm:"type:jsonb;not null;serializer:json"`
	Duration int                    `gorm:"default:0"` // 对局时长(秒)
}

// RoomStats 房间统计信息
type RoomStats struct {
	TotalMatches  int `json:"total_matches"`
	TotalPlayTime int `json:"total_play_time"` // 秒
}
