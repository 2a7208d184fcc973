package main

import (
	"log"

	"analytics-sync/src/config"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if dsn := destinationDSN(cfg); dsn != "" {
		apply(dsn, "./migrations/analytics")
	}
	if cfg.MultiTenant() {
		apply(cfg.Databases.Control.ConnectionString, "./migrations/control")
	}

	log.Println("Database migration completed successfully")
}

func destinationDSN(cfg *config.Config) string {
	sql := cfg.Databases.SQL
	if sql.ConnectionString != "" {
		return sql.ConnectionString
	}
	if sql.Host == "" || sql.Database == "" {
		return ""
	}
	return "host=" + sql.Host + " user=" + sql.Username + " password=" + sql.Password +
		" dbname=" + sql.Database + " port=" + sql.Port + " sslmode=disable"
}

func apply(dsn, dir string) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB from GORM DB: %v", err)
	}
	defer sqlDB.Close()

	if err := goose.Up(sqlDB, dir); err != nil {
		log.Fatalf("Failed to apply migrations from %s: %v", dir, err)
	}
}
