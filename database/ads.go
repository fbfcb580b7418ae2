package database

import (
	"database/sql"
	"fmt"
	"time"

	"lfg-bot/models"
)

// AdDB 处理广告表的所有读写。
// 所有状态转换都是单条带条件的 UPDATE，多个独立 worker 并发写入时依然正确。
type AdDB struct {
	db *sql.DB
}

// NewAdDB 创建广告数据库实例
func NewAdDB(db *sql.DB) *AdDB {
	return &AdDB{db: db}
}

// InsertAd 插入一条新广告，状态为 open，返回带 ID 的完整记录。
func (adb *AdDB) InsertAd(authorID, game, notes string, now time.Time) (models.Ad, error) {
	query := `INSERT INTO ads (author_id, game, notes, status, created_at) VALUES (?, ?, ?, 'open', ?)`

	result, err := adb.db.Exec(query, authorID, game, notes, now.Unix())
	if err != nil {
		return models.Ad{}, fmt.Errorf("插入广告失败: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Ad{}, fmt.Errorf("获取广告 ID 失败: %w", err)
	}

	return models.Ad{
		ID:        id,
		AuthorID:  authorID,
		Game:      game,
		Notes:     notes,
		Status:    models.AdStatusOpen,
		CreatedAt: now,
	}, nil
}

// GetAd 按 ID 查询广告，不存在时返回 ErrNotFound。
func (adb *AdDB) GetAd(id int64) (models.Ad, error) {
	query := `SELECT id, author_id, game, notes, status, created_at, claimed_by, claimed_at FROM ads WHERE id = ?`

	var ad models.Ad
	var status string
	var createdAt int64
	var claimedBy sql.NullString
	var claimedAt sql.NullInt64

	err := adb.db.QueryRow(query, id).Scan(
		&ad.ID, &ad.AuthorID, &ad.Game, &ad.Notes, &status, &createdAt, &claimedBy, &claimedAt,
	)
	if err == sql.ErrNoRows {
		return models.Ad{}, ErrNotFound
	}
	if err != nil {
		return models.Ad{}, fmt.Errorf("查询广告 %d 失败: %w", id, err)
	}

	ad.Status = models.AdStatus(status)
	ad.CreatedAt = time.Unix(createdAt, 0)
	if claimedBy.Valid {
		ad.ClaimedBy = claimedBy.String
	}
	if claimedAt.Valid {
		ad.ClaimedAt = time.Unix(claimedAt.Int64, 0)
	}
	return ad, nil
}

// ClaimAd 尝试以条件更新把广告从 open 转为 claimed。
// WHERE status='open' 保证同一条广告只有一个并发调用者能改写成功；
// 没有命中任何行时返回 ErrConflict，由调用方重新读取已提交的状态。
func (adb *AdDB) ClaimAd(id int64, claimantID string, now time.Time) error {
	query := `UPDATE ads SET status = 'claimed', claimed_by = ?, claimed_at = ? WHERE id = ? AND status = 'open'`

	result, err := adb.db.Exec(query, claimantID, now.Unix(), id)
	if err != nil {
		return fmt.Errorf("认领广告 %d 失败: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("读取认领结果失败: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// CancelAd 以与认领相同的条件更新把广告从 open 转为 cancelled。
// 与并发的认领竞争时，先提交者获胜，失败一方得到 ErrConflict。
func (adb *AdDB) CancelAd(id int64) error {
	query := `UPDATE ads SET status = 'cancelled' WHERE id = ? AND status = 'open'`

	result, err := adb.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("取消广告 %d 失败: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("读取取消结果失败: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// ExpireAds 把创建时间早于 cutoff 的 open 广告批量转为 expired，返回转换数量。
func (adb *AdDB) ExpireAds(cutoff time.Time) (int64, error) {
	query := `UPDATE ads SET status = 'expired' WHERE status = 'open' AND created_at <= ?`

	result, err := adb.db.Exec(query, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("过期广告失败: %w", err)
	}
	return result.RowsAffected()
}

// RecordClick 记录一次 Connect 点击，同一用户对同一广告只记一行。
func (adb *AdDB) RecordClick(adID int64, userID string, now time.Time) error {
	query := `INSERT OR IGNORE INTO ad_clicks (ad_id, user_id, clicked_at) VALUES (?, ?, ?)`

	_, err := adb.db.Exec(query, adID, userID, now.Unix())
	if err != nil {
		return fmt.Errorf("记录点击失败: %w", err)
	}
	return nil
}

// CountClicks 返回一条广告的独立点击人数。
func (adb *AdDB) CountClicks(adID int64) (int64, error) {
	var count int64
	err := adb.db.QueryRow(`SELECT COUNT(*) FROM ad_clicks WHERE ad_id = ?`, adID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("统计点击失败: %w", err)
	}
	return count, nil
}
