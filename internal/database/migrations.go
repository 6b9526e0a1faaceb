package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
	unique  bool
	where   string
}

var indexes = []index{
	{table: "tasks", name: "idx_tasks_project_deadline", columns: "project_id, deadline"},
	{table: "tasks", name: "idx_tasks_performer_status", columns: "performer_id, status_id"},

	{table: "project_participants", name: "idx_project_participants_user_id", columns: "user_id"},
	{table: "association_table", name: "idx_association_table_roles_id", columns: "roles_id"},

	{table: "projectinvitations", name: "idx_projectinvitations_invited_status", columns: "invited_id, status"},
	{table: "projectinvitations", name: "idx_projectinvitations_inviter_id", columns: "inviter_id"},
	// At most one pending invitation per project and invitee.
	{
		table:   "projectinvitations",
		name:    "uniq_projectinvitations_pending",
		columns: "project_id, invited_id",
		unique:  true,
		where:   "status = 'pending'",
	},
}

// AddIndexes creates the composite and partial indexes AutoMigrate cannot express.
// MySQL has no partial indexes, so filtered unique indexes are built from
// functional key parts that are NULL outside the filter.
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	dialect := db.Dialector.Name()
	switch dialect {
	case "postgres", "mysql", "sqlite":
	default:
		log.Info("Skipping extra indexes", slog.String("dialect", dialect))
		return nil
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		if err := db.Exec(idx.statement(dialect)).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", slog.String("index", idx.name), slog.String("table", idx.table))
	}

	return nil
}

func (i index) statement(dialect string) string {
	kind := "INDEX"
	if i.unique {
		kind = "UNIQUE INDEX"
	}

	if i.where != "" && dialect == "mysql" {
		cols := strings.Split(i.columns, ",")
		parts := make([]string, len(cols))
		for n, col := range cols {
			parts[n] = fmt.Sprintf("(CASE WHEN %s THEN %s END)", i.where, strings.TrimSpace(col))
		}
		return fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, i.name, i.table, strings.Join(parts, ", "))
	}

	sql := fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, i.name, i.table, i.columns)
	if i.where != "" {
		sql += " WHERE " + i.where
	}
	return sql
}

// MigrateDatabase runs AutoMigrate followed by the extra indexes.
func MigrateDatabase(db *gorm.DB, log *slog.Logger) error {
	if err := Migrate(db); err != nil {
		return err
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
