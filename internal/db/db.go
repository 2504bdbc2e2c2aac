package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/goaccelovate/ai-chat-backend/internal/chat"
	"github.com/goaccelovate/ai-chat-backend/internal/settings"
)

// Connect opens the configured database and migrates the schema. sqlite
// keeps single-site installs dependency-free; mysql matches the original
// hosted deployments.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "", "sqlite":
		dial = sqlite.Open(dsn)
	case "mysql":
		dial = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%q", driver)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(
		&chat.Conversation{},
		&chat.Message{},
		&chat.ExactReply{},
		&settings.Setting{},
	); err != nil {
		return nil, err
	}
	return gdb, nil
}
