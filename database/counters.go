package database

import (
	"database/sql"
	"fmt"
)

// Metric names tracked by the counter store.
const (
	MetricAdsPosted       = "ads_posted"
	MetricConnectionsMade = "connections_made"
	MetricMatchesMade     = "matches_made"
	MetricErrors          = "errors"
)

// MetaKeyBotStartTime 进程启动时间，只在首次启动的进程里写入一次。
const MetaKeyBotStartTime = "bot_start_time"

// knownMetrics 是快照中始终返回的指标集合，没有任何事件时值为 0。
var knownMetrics = []string{
	MetricAdsPosted,
	MetricConnectionsMade,
	MetricMatchesMade,
	MetricErrors,
}

// CounterDB 管理持久化计数器和 meta 键值。
// 计数器用数据库自身的原子更新累加，跨进程并发写入不丢更新。
type CounterDB struct {
	db *sql.DB
}

// NewCounterDB 创建计数器数据库实例
func NewCounterDB(db *sql.DB) *CounterDB {
	return &CounterDB{db: db}
}

// Increment 给指定指标原子加 delta。
// 先 INSERT OR IGNORE 保证行存在，再用 value = value + ? 累加；
// 两条语句各自原子，任意并发调用者的增量都不会丢失。
func (cdb *CounterDB) Increment(metric string, delta int64) error {
	if _, err := cdb.db.Exec(`INSERT OR IGNORE INTO counters (metric, value) VALUES (?, 0)`, metric); err != nil {
		return fmt.Errorf("初始化计数器 %s 失败: %w", metric, err)
	}

	_, err := cdb.db.Exec(`UPDATE counters SET value = value + ? WHERE metric = ?`, delta, metric)
	if err != nil {
		return fmt.Errorf("更新计数器 %s 失败: %w", metric, err)
	}
	return nil
}

// Snapshot 返回所有已知指标的当前值，未写入过的指标为 0。
func (cdb *CounterDB) Snapshot() (map[string]int64, error) {
	snapshot := make(map[string]int64, len(knownMetrics))
	for _, metric := range knownMetrics {
		snapshot[metric] = 0
	}

	rows, err := cdb.db.Query(`SELECT metric, value FROM counters`)
	if err != nil {
		return nil, fmt.Errorf("读取计数器快照失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var metric string
		var value int64
		if err := rows.Scan(&metric, &value); err != nil {
			return nil, fmt.Errorf("读取计数器行失败: %w", err)
		}
		snapshot[metric] = value
	}
	return snapshot, rows.Err()
}

// SetMeta 写入 meta 键值，已存在时覆盖。bot_start_time 在每次进程启动时写一次。
func (cdb *CounterDB) SetMeta(key, value string) error {
	_, err := cdb.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("写入 meta %s 失败: %w", key, err)
	}
	return nil
}

// GetMeta 读取 meta 键值，不存在时返回空字符串。
func (cdb *CounterDB) GetMeta(key string) (string, error) {
	var value string
	err := cdb.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取 meta %s 失败: %w", key, err)
	}
	return value, nil
}
