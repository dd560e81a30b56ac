package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// AddIndexes adds composite indexes that the struct tags cannot express.
func AddIndexes(db *gorm.DB, log zerolog.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task listing per organization and the status CAS
		{"tasks", "idx_tasks_org_created", "organization_id, created_at"},
		{"tasks", "idx_tasks_id_status", "id, status"},

		// Membership lookups from the user side
		{"organization_members", "idx_org_members_user_org", "user_id, organization_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Msg("created index")
	}

	return addLiveUniqueIndexes(db, log)
}

// liveUniqueIndexes keep a column unique among rows that are not soft deleted.
var liveUniqueIndexes = []struct {
	table  string
	name   string
	column string
}{
	{"users", "idx_users_live_username", "username"},
	{"organizations", "idx_organizations_live_name", "name"},
}

func addLiveUniqueIndexes(db *gorm.DB, log zerolog.Logger) error {
	migrator := db.Migrator()
	for _, idx := range liveUniqueIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		sql := liveUniqueIndexSQL(db.Dialector.Name(), idx.table, idx.name, idx.column)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Msg("created unique index")
	}
	return nil
}

// liveUniqueIndexSQL builds the statement for dialect. MySQL has no partial
// indexes, so it indexes an expression that is NULL for deleted rows; NULLs
// never collide in a unique index.
func liveUniqueIndexSQL(dialect, table, name, column string) string {
	if dialect == "mysql" {
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s ((IF(deleted_at IS NULL, %s, NULL)))", name, table, column)
	}
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s) WHERE deleted_at IS NULL", name, table, column)
}

// MigrateDatabase runs the schema migration followed by AddIndexes.
func MigrateDatabase(db *gorm.DB, log zerolog.Logger) error {
	if err := Migrate(db, log); err != nil {
		return err
	}
	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	return nil
}
