package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yukikurage/earth-fighter-api/internal/config"
	"github.com/yukikurage/earth-fighter-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm dialector for the configured driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Open opens a gorm handle. Driver errors are translated so duplicate keys
// surface as gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Connect opens the configured database.
func Connect(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Info
	if cfg.IsProduction() {
		level = logger.Warn
	}

	db, err := Open(dialector, level)
	if err != nil {
		return nil, err
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("database connection established")
	return db, nil
}

// OpenInMemory opens a private in-memory sqlite database with the schema and indexes applied.
// Every call returns an independent database.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(sqlite.Open(":memory:"), logger.Silent)
	if err != nil {
		return nil, err
	}

	// Each sqlite connection has its own :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := MigrateDatabase(db, zerolog.Nop()); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB, log zerolog.Logger) error {
	log.Info().Msg("running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info().Msg("database migrations completed")
	return nil
}
