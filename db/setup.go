package db

import (
	"strings"
	"time"

	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the database. TranslateError lets repositories detect
// unique violations as gorm.ErrDuplicatedKey.
func Connect(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(parseLogLevel(logLevel)),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})

	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()

	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Connection{},
		&models.Team{},
		&models.TeamMember{},
		&models.TeamFollow{},
		&models.TeamJoinRequest{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Post{},
		&models.Reaction{},
		&models.Comment{},
		&models.Share{},
		&models.Bookmark{},
		&models.Notification{},
		&models.Message{},
	}
}

func Migrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return err
		}
	}

	logger.Log.WithField("tables", len(Models())).Info("database migrated")

	return nil
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
