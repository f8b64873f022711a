package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"maskan/internal/config"
	"maskan/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "maskan.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	user := &models.User{FirstName: "Aziz", Role: models.RoleTenant, Balance: decimal.RequireFromString("100.00")}
	require.NoError(t, db.CreateUser(context.Background(), user))

	backupDir := filepath.Join(dir, "backups")
	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Копия открывается и содержит данные
	restored, err := NewDB(filepath.Join(backupDir, entries[0].Name()), &logger)
	require.NoError(t, err)
	defer restored.Close()

	got, err := restored.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aziz", got.FirstName)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("100.00")))
}
