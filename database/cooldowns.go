package database

import (
	"database/sql"
	"fmt"
	"time"
)

// CooldownDB 管理用户发布广告的冷却时间。
type CooldownDB struct {
	db *sql.DB
}

// NewCooldownDB 创建冷却数据库实例
func NewCooldownDB(db *sql.DB) *CooldownDB {
	return &CooldownDB{db: db}
}

// NextOkAt 返回用户下次允许发布的时间，没有记录时 ok 为 false。
func (cdb *CooldownDB) NextOkAt(userID string) (time.Time, bool, error) {
	var nextOkAt int64
	err := cdb.db.QueryRow(`SELECT next_ok_at FROM user_post_cooldowns WHERE user_id = ?`, userID).Scan(&nextOkAt)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("查询用户 %s 冷却失败: %w", userID, err)
	}
	return time.Unix(nextOkAt, 0), true, nil
}

// SetNextOkAt 写入或覆盖用户的下次允许发布时间。
func (cdb *CooldownDB) SetNextOkAt(userID string, when time.Time) error {
	query := `INSERT OR REPLACE INTO user_post_cooldowns (user_id, next_ok_at) VALUES (?, ?)`

	_, err := cdb.db.Exec(query, userID, when.Unix())
	if err != nil {
		return fmt.Errorf("设置用户 %s 冷却失败: %w", userID, err)
	}
	return nil
}

// SweepExpired 删除已经过期的冷却记录，返回删除数量。由定时任务调用。
func (cdb *CooldownDB) SweepExpired(now time.Time) (int64, error) {
	result, err := cdb.db.Exec(`DELETE FROM user_post_cooldowns WHERE next_ok_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("清理过期冷却失败: %w", err)
	}
	return result.RowsAffected()
}
