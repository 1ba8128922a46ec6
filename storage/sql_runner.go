package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"margin-leakage/utils"
)

// the layered transformation stages, in execution order
var sqlLayers = []string{"staging", "intermediate", "marts"}

// SQLRunner executes the layered SQL pipeline (staging -> intermediate ->
// marts) against the raw tables. Execution is best-effort batch: a failed
// step is reported and the remaining steps still run; the aggregate error is
// non-nil if anything failed.
type SQLRunner struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewSQLRunner creates a runner over an open connection
func NewSQLRunner(db *sql.DB, logger *utils.Logger) *SQLRunner {
	return &SQLRunner{db: db, logger: logger}
}

// RunLayers executes every .sql file under <sqlDir>/<layer>/ in lexical
// order per layer. A missing layer directory is skipped.
func (r *SQLRunner) RunLayers(sqlDir string) error {
	executed := 0
	var failed []string

	for _, layer := range sqlLayers {
		layerDir := filepath.Join(sqlDir, layer)
		if _, err := os.Stat(layerDir); os.IsNotExist(err) {
			r.logger.Debug("Layer %s not present, skipping", layerDir)
			continue
		}

		files, err := filepath.Glob(filepath.Join(layerDir, "*.sql"))
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", layerDir, err)
		}
		sort.Strings(files)

		for _, file := range files {
			query, err := os.ReadFile(file)
			if err != nil {
				r.logger.Error("Failed to read %s: %v", file, err)
				failed = append(failed, filepath.Base(file))
				continue
			}

			if _, err := r.db.Exec(string(query)); err != nil {
				r.logger.Error("Error in %s: %v", filepath.Base(file), err)
				failed = append(failed, filepath.Base(file))
				continue
			}

			r.logger.Info("Executed %s", filepath.Base(file))
			executed++
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d SQL steps failed: %v", len(failed), executed+len(failed), failed)
	}
	r.logger.Info("SQL pipeline complete (%d steps)", executed)
	return nil
}
