package db

import (
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	embeddedmigrations "github.com/terraincognita07/innercalm/migrations"
	"gorm.io/gorm"
)

func openSQLiteForTest(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "innercalm-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	database := openSQLiteForTest(t)

	for _, column := range []string{"id", "owner_id", "created_at", "mood", "sleep_hours", "suicidal_thoughts", "critical"} {
		exists, err := tableColumnExists(database, "mood_records", column)
		if err != nil {
			t.Fatalf("inspect mood_records: %v", err)
		}
		if !exists {
			t.Fatalf("expected mood_records.%s to exist", column)
		}
	}

	entries, err := fs.ReadDir(embeddedmigrations.Files, ".")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	var applied int64
	if err := database.Raw(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied).Error; err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if int(applied) != len(entries) {
		t.Fatalf("expected %d applied migrations, got %d", len(entries), applied)
	}
}

func TestOpenSQLiteIsIdempotentOnReopen(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "innercalm-reopen.db")
	for attempt := 0; attempt < 2; attempt++ {
		database, err := OpenSQLite(databasePath)
		if err != nil {
			t.Fatalf("open sqlite attempt %d: %v", attempt, err)
		}
		sqlDB, _ := database.DB()
		_ = sqlDB.Close()
	}
}

func TestMigratorSkipsAddColumnWhenColumnExists(t *testing.T) {
	database := openSQLiteForTest(t)

	source := fstest.MapFS{
		"0100_add_critical_again.sql": &fstest.MapFile{
			Data: []byte("ALTER TABLE mood_records ADD COLUMN critical NUMERIC NOT NULL DEFAULT 0;\nALTER TABLE mood_records ADD COLUMN note TEXT NOT NULL DEFAULT '';"),
		},
		"README.md": &fstest.MapFile{Data: []byte("ignored")},
	}
	if err := (&migrator{database: database, source: source}).run(); err != nil {
		t.Fatalf("run migrator: %v", err)
	}

	exists, err := tableColumnExists(database, "mood_records", "note")
	if err != nil {
		t.Fatalf("inspect mood_records: %v", err)
	}
	if !exists {
		t.Fatal("expected new note column to be added")
	}
}

func TestMigratorRejectsDuplicateVersions(t *testing.T) {
	database := openSQLiteForTest(t)

	source := fstest.MapFS{
		"0200_first.sql":  &fstest.MapFile{Data: []byte("SELECT 1;")},
		"0200_second.sql": &fstest.MapFile{Data: []byte("SELECT 2;")},
	}
	if err := (&migrator{database: database, source: source}).run(); err == nil {
		t.Fatal("expected duplicate migration versions to fail")
	}
}

func TestSplitSQLStatementsDropsBlankParts(t *testing.T) {
	statements := splitSQLStatements("CREATE TABLE a (id INTEGER);\n\n ;CREATE INDEX b ON a(id);  ")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %#v", statements)
	}
}
