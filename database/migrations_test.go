package database

import (
	"path/filepath"
	"testing"
)

func TestBackupDatabaseMissingBinary(t *testing.T) {
	// An empty PATH hides mysqldump; the error must surface instead of
	// being swallowed.
	t.Setenv("PATH", t.TempDir())
	if err := BackupDatabase(filepath.Join(t.TempDir(), "dump.sql")); err == nil {
		t.Fatalf("expected an error when mysqldump is not on PATH")
	}
}
