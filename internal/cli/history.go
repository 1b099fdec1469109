package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/terraincognita07/innercalm/internal/db"
	"github.com/terraincognita07/innercalm/internal/models"
	"github.com/terraincognita07/innercalm/internal/services"
	"go.uber.org/zap"
)

type HistoryOptions struct {
	DBPath        string
	OwnerID       uint
	LocalPath     string
	Limit         int
	RemoteTimeout time.Duration
	Logger        *zap.Logger
}

type historyOutput struct {
	OwnerID         uint                `json:"owner_id"`
	RemoteAvailable bool                `json:"remote_available"`
	MoodLogs        []models.MoodRecord `json:"mood_logs"`
}

// RunHistoryCommand prints an owner's reconciled history as JSON. The file at
// LocalPath, when given, plays the role of the client's cached snapshot.
func RunHistoryCommand(ctx context.Context, out io.Writer, options HistoryOptions) error {
	if options.OwnerID == 0 {
		return errors.New("owner id is required")
	}

	local, err := readLocalSnapshot(options.LocalPath)
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(options.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	repositories := db.NewRepositories(database)
	history := services.NewHistoryService(repositories.MoodRecords, options.RemoteTimeout, options.Logger).
		Reconciled(ctx, options.OwnerID, local, options.Limit)

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(historyOutput{
		OwnerID:         options.OwnerID,
		RemoteAvailable: history.RemoteAvailable,
		MoodLogs:        history.Records,
	})
}

// RunMigrateCommand applies the embedded migrations and reports success.
func RunMigrateCommand(out io.Writer, dbPath string) error {
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	_, err = fmt.Fprintf(out, "migrations applied to %s\n", dbPath)
	return err
}

func readLocalSnapshot(path string) ([]models.MoodRecord, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local snapshot: %w", err)
	}

	var records []models.MoodRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse local snapshot %s: %w", path, err)
	}
	return records, nil
}
