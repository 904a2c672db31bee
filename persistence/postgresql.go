// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/washer/curvytron/models"
)

// PostgreSQL 数据库实现 (database/sql)
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_name VARCHAR(255) NOT NULL,
            players JSONB NOT NULL,
            duration INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_match_records_room_name ON match_records(room_name);
        CREATE INDEX IF NOT EXISTS idx_match_records_created_at ON match_records(created_at);
    `)
	return err
}

// SaveMatchRecord 保存对局记录
func (p *PostgreSQL) SaveMatchRecord(record *models.MatchRecord) error {
	playersJSON, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO match_records (room_name, players, duration)
        VALUES ($1, $2, $3)
    `

	_, err = p.db.ExecContext(ctx, query, record.RoomName, playersJSON, record.Duration)
	return err
}

// ListMatchRecords 查询房间最近的对局记录
func (p *PostgreSQL) ListMatchRecords(roomName string, limit int) ([]models.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        SELECT id, room_name, players, duration, created_at
        FROM match_records
        WHERE room_name = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := p.db.QueryContext(ctx, query, roomName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var record models.MatchRecord
		var playersJSON []byte
		if err := rows.Scan(&record.ID, &record.RoomName, &playersJSON, &record.Duration, &record.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(playersJSON, &record.Players); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetRoomStats 房间统计: 对局数与总时长
func (p *PostgreSQL) GetRoomStats(roomName string) (*models.RoomStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var stats models.RoomStats
	query := `
        SELECT COUNT(*), COALESCE(SUM(duration), 0)
        FROM match_records
        WHERE room_name = $1
    `
	err := p.db.QueryRowContext(ctx, query, roomName).Scan(&stats.TotalMatches, &stats.TotalPlayTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
