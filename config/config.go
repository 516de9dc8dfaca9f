package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB      DBConfig
	Redis   RedisConfig
	Notify  NotifyConfig
	Puzzles PuzzlesConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Addr     string // empty disables the product cache
	Password string
	DB       int
}

type NotifyConfig struct {
	Token  string // Telegram bot token for staff notifications; empty disables
	ChatID int64  // staff chat that receives delivery status updates
}

type PuzzlesConfig struct {
	File string // optional YAML pool loaded by the seed-puzzles subcommand
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	chatID, _ := strconv.ParseInt(getEnv("NOTIFY_CHAT_ID", "0"), 10, 64)

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "concessions"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Notify: NotifyConfig{
			Token:  getEnv("NOTIFY_TOKEN", ""),
			ChatID: chatID,
		},
		Puzzles: PuzzlesConfig{
			File: getEnv("PUZZLES_FILE", "puzzles.yaml"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
