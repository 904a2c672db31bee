// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/washer/curvytron/models"
)

// Database 数据库接口
//
// Both the GORM and the plain database/sql backends implement it; the
// lobby core only ever sees this surface.
type Database interface {
	SaveMatchRecord(record *models.MatchRecord) error
	ListMatchRecords(roomName string, limit int) ([]models.MatchRecord, error)
	GetRoomStats(roomName string) (*models.RoomStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
