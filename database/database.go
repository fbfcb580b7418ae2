package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
)

// InitDB initializes the database connection. It takes the database path as input.
// Every table used by the bot is created here so that a fresh deployment starts
// from an empty but complete schema.
func InitDB(dbPath string) (*sql.DB, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open the SQLite database. It will be created if it doesn't exist.
	// busy_timeout makes concurrent writers wait on the file lock instead of
	// failing immediately; claim arbitration relies on those writes going through.
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Ping the database to verify the connection.
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("Successfully connected to the database at", dbPath)
	return db, nil
}

// createTables creates all tables if they don't exist.
func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS guild_config (
			guild_id   TEXT PRIMARY KEY,
			channel_id TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS guilds (
			guild_id  TEXT PRIMARY KEY,
			joined_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS ads (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id  TEXT NOT NULL,
			game       TEXT NOT NULL,
			notes      TEXT,
			status     TEXT NOT NULL DEFAULT 'open',
			created_at INTEGER NOT NULL,
			claimed_by TEXT,
			claimed_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS posted_messages (
			ad_id       INTEGER NOT NULL,
			guild_id    TEXT NOT NULL,
			channel_id  TEXT NOT NULL,
			message_ref TEXT NOT NULL,
			PRIMARY KEY (ad_id, guild_id)
		);`,
		`CREATE TABLE IF NOT EXISTS ad_clicks (
			ad_id      INTEGER NOT NULL,
			user_id    TEXT NOT NULL,
			clicked_at INTEGER NOT NULL,
			PRIMARY KEY (ad_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS counters (
			metric TEXT PRIMARY KEY,
			value  INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS user_post_cooldowns (
			user_id    TEXT PRIMARY KEY,
			next_ok_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ads_status ON ads (status);`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
