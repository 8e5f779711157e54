package database

import (
	"github.com/gabzin/SerialBoxBot/internal/database/models"
	"github.com/gabzin/SerialBoxBot/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(config.DatabaseFile), &gorm.Config{})
	if err != nil {
		panic(err)
	}
	db.Config.Logger = logger.Default.LogMode(logger.Silent)

	err = db.AutoMigrate(
		&models.User{},
	)
	if err != nil {
		panic(err)
	}

	return db
}
