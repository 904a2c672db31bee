// services/match_service.go
package services

import (
	"time"

	"github.com/washer/curvytron/models"
	"github.com/washer/curvytron/persistence"
)

// MatchService records finished matches and answers stats queries. A nil
// service (recording disabled) is safe to call.
type MatchService struct {
	db persistence.Database
}

func NewMatchService(db persistence.Database) *MatchService {
	return &MatchService{db: db}
}

// RecordMatch 保存一局对局的结果
func (s *MatchService) RecordMatch(roomName string, scores map[string]interface{}, duration time.Duration) error {
	if s == nil || s.db == nil {
		return nil
	}

	record := &models.MatchRecord{
		RoomName: roomName,
		Players:  scores,
		Duration: int(duration.Seconds()),
	}
	return s.db.SaveMatchRecord(record)
}

// RecentMatches 查询房间最近的对局
func (s *MatchService) RecentMatches(roomName string, limit int) ([]models.MatchRecord, error) {
	if s == nil || s.db == nil {
		return nil, persistence.ErrRecordNotFound
	}
	if limit <= 0 {
		limit = 10
	}
	return s.db.ListMatchRecords(roomName, limit)
}

// RoomStats 查询房间统计信息
func (s *MatchService) RoomStats(roomName string) (*models.RoomStats, error) {
	if s == nil || s.db == nil {
		return nil, persistence.ErrRecordNotFound
	}
	return s.db.GetRoomStats(roomName)
}
