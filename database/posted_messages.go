package database

import (
	"database/sql"
	"fmt"

	"lfg-bot/models"
)

// PostedMessageDB 记录每条广告在各个服务器里实际发出的消息。
// 认领成功后，仲裁器用这些记录去禁用其余副本上的 Connect 按钮。
type PostedMessageDB struct {
	db *sql.DB
}

// NewPostedMessageDB 创建消息记录数据库实例
func NewPostedMessageDB(db *sql.DB) *PostedMessageDB {
	return &PostedMessageDB{db: db}
}

// Insert 记录一条已发出的广告消息，每个服务器至多一条。
func (pdb *PostedMessageDB) Insert(pm models.PostedMessage) error {
	query := `INSERT OR REPLACE INTO posted_messages (ad_id, guild_id, channel_id, message_ref) VALUES (?, ?, ?, ?)`

	_, err := pdb.db.Exec(query, pm.AdID, pm.GuildID, pm.ChannelID, pm.MessageRef)
	if err != nil {
		return fmt.Errorf("记录广告 %d 在服务器 %s 的消息失败: %w", pm.AdID, pm.GuildID, err)
	}
	return nil
}

// ListByAd 返回一条广告的全部消息记录。
func (pdb *PostedMessageDB) ListByAd(adID int64) ([]models.PostedMessage, error) {
	rows, err := pdb.db.Query(`SELECT ad_id, guild_id, channel_id, message_ref FROM posted_messages WHERE ad_id = ?`, adID)
	if err != nil {
		return nil, fmt.Errorf("查询广告 %d 的消息记录失败: %w", adID, err)
	}
	defer rows.Close()

	var messages []models.PostedMessage
	for rows.Next() {
		var pm models.PostedMessage
		if err := rows.Scan(&pm.AdID, &pm.GuildID, &pm.ChannelID, &pm.MessageRef); err != nil {
			return nil, fmt.Errorf("读取消息记录失败: %w", err)
		}
		messages = append(messages, pm)
	}
	return messages, rows.Err()
}
