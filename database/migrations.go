package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"gorm.io/gorm"
)

// BackupDatabase shells out to mysqldump when it is on PATH. Flags come from
// DB_BACKUP_FLAGS; the dump is written to outPath.
func BackupDatabase(outPath string) error {
	if _, err := exec.LookPath("mysqldump"); err != nil {
		return fmt.Errorf("mysqldump not found in PATH: %w", err)
	}
	cmd := exec.CommandContext(context.Background(), "mysqldump", strings.Fields(os.Getenv("DB_BACKUP_FLAGS"))...)
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	cmd.Stdout = outFile
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysqldump failed: %w", err)
	}
	return nil
}

// RunMigrations runs AutoMigrate for the given models. When DB_BACKUP_PATH
// is set a dump is taken first and must finish before the schema changes;
// a failed dump is logged but does not block the migration.
func RunMigrations(db *gorm.DB, models ...interface{}) error {
	if backupPath := os.Getenv("DB_BACKUP_PATH"); backupPath != "" {
		if err := BackupDatabase(backupPath); err != nil {
			log.Printf("[DB] pre-migration backup failed: %v", err)
		} else {
			log.Printf("[DB] pre-migration backup written to %s", backupPath)
		}
	}
	return db.AutoMigrate(models...)
}
