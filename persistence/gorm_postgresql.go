// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/washer/curvytron/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.MatchRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveMatchRecord 保存对局记录
func (p *GormPostgreSQL) SaveMatchRecord(record *models.MatchRecord) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
}

// ListMatchRecords 查询房间最近的对局记录
func (p *GormPostgreSQL) ListMatchRecords(roomName string, limit int) ([]models.MatchRecord, error) {
	var records []models.MatchRecord
	err := p.db.
		Where("room_name = ?", roomName).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// GetRoomStats 房间统计: 对局数与总时长
func (p *GormPostgreSQL) GetRoomStats(roomName string) (*models.RoomStats, error) {
	var stats models.RoomStats

	err := p.db.Raw(
		`
        SELECT
            COUNT(*) as total_matches,
            COALESCE(SUM(duration), 0) as total_play_time
        FROM match_records
        WHERE room_name = ?`,
		roomName,
	).Scan(&stats).Error

	return &stats, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
