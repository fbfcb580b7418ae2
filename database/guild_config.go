package database

import (
	"database/sql"
	"fmt"
	"time"

	"lfg-bot/models"
)

// GuildConfigDB 管理每个服务器的广播频道配置和服务器名册。
type GuildConfigDB struct {
	db *sql.DB
}

// NewGuildConfigDB 创建服务器配置数据库实例
func NewGuildConfigDB(db *sql.DB) *GuildConfigDB {
	return &GuildConfigDB{db: db}
}

// SetChannel 设置服务器的广播频道，已存在则覆盖（last-writer-wins）。
func (gdb *GuildConfigDB) SetChannel(guildID, channelID string) error {
	query := `INSERT OR REPLACE INTO guild_config (guild_id, channel_id) VALUES (?, ?)`

	_, err := gdb.db.Exec(query, guildID, channelID)
	if err != nil {
		return fmt.Errorf("设置服务器 %s 的频道失败: %w", guildID, err)
	}
	return nil
}

// GetChannel 返回服务器配置的频道，未配置时返回 ErrUnconfigured。
func (gdb *GuildConfigDB) GetChannel(guildID string) (string, error) {
	var channelID sql.NullString
	err := gdb.db.QueryRow(`SELECT channel_id FROM guild_config WHERE guild_id = ?`, guildID).Scan(&channelID)
	if err == sql.ErrNoRows {
		return "", ErrUnconfigured
	}
	if err != nil {
		return "", fmt.Errorf("查询服务器 %s 的频道失败: %w", guildID, err)
	}
	if !channelID.Valid || channelID.String == "" {
		return "", ErrUnconfigured
	}
	return channelID.String, nil
}

// ClearChannel 清除服务器的频道配置，保留配置行本身。
func (gdb *GuildConfigDB) ClearChannel(guildID string) error {
	query := `UPDATE guild_config SET channel_id = NULL WHERE guild_id = ?`

	_, err := gdb.db.Exec(query, guildID)
	if err != nil {
		return fmt.Errorf("清除服务器 %s 的频道失败: %w", guildID, err)
	}
	return nil
}

// ListConfigured 返回所有配置了频道的服务器，供广播扇出使用。
func (gdb *GuildConfigDB) ListConfigured() ([]models.GuildConfig, error) {
	rows, err := gdb.db.Query(`SELECT guild_id, channel_id FROM guild_config WHERE channel_id IS NOT NULL AND channel_id != ''`)
	if err != nil {
		return nil, fmt.Errorf("查询已配置服务器失败: %w", err)
	}
	defer rows.Close()

	var configs []models.GuildConfig
	for rows.Next() {
		var gc models.GuildConfig
		if err := rows.Scan(&gc.GuildID, &gc.ChannelID); err != nil {
			return nil, fmt.Errorf("读取服务器配置失败: %w", err)
		}
		configs = append(configs, gc)
	}
	return configs, rows.Err()
}

// AddGuild 把服务器加入名册，重复加入不报错。
func (gdb *GuildConfigDB) AddGuild(guildID string, now time.Time) error {
	query := `INSERT OR IGNORE INTO guilds (guild_id, joined_at) VALUES (?, ?)`

	_, err := gdb.db.Exec(query, guildID, now.Unix())
	if err != nil {
		return fmt.Errorf("记录服务器 %s 失败: %w", guildID, err)
	}
	return nil
}

// RemoveGuild 把服务器从名册移除。
func (gdb *GuildConfigDB) RemoveGuild(guildID string) error {
	_, err := gdb.db.Exec(`DELETE FROM guilds WHERE guild_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("移除服务器 %s 失败: %w", guildID, err)
	}
	return nil
}

// CountGuilds 返回名册中的服务器数量，供 stats 快照使用。
func (gdb *GuildConfigDB) CountGuilds() (int64, error) {
	var count int64
	err := gdb.db.QueryRow(`SELECT COUNT(*) FROM guilds`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("统计服务器数量失败: %w", err)
	}
	return count, nil
}
