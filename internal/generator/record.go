package generator

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/packetdoc/internal/config"
	"github.com/yourorg/packetdoc/internal/store"
	"github.com/yourorg/packetdoc/pkg/types"
)

// Recorder is the part of the run catalog a recorded generation needs.
type Recorder interface {
	CreateRun(assembly, metadataPath, docsPath, outputDir string) (*types.Run, error)
	SaveBook(runID string, book *types.Book) error
	UpdateRunStatus(id, status string) error
}

// GenerateRecorded loads both inputs, generates every configured format
// and stores the result as a new run. A failed generation still leaves a
// run behind, marked failed, including one whose book could not be saved.
func GenerateRecorded(metadataPath, docsPath string, cfg *config.Config, rec Recorder, logger *slog.Logger, onProgress ProgressFunc) (*types.Run, *types.Book, error) {
	if rec == nil {
		return nil, nil, fmt.Errorf("recorder is nil")
	}
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is nil")
	}
	run, err := rec.CreateRun("", metadataPath, docsPath, cfg.Output.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("create run: %w", err)
	}

	book, err := generate(metadataPath, docsPath, cfg, logger, onProgress)
	if err == nil {
		if err = rec.SaveBook(run.ID, book); err != nil {
			err = fmt.Errorf("save run %s: %w", run.ID, err)
		}
	}
	if err != nil {
		if serr := rec.UpdateRunStatus(run.ID, store.StatusFailed); serr != nil && logger != nil {
			logger.Warn("mark run failed", "run", run.ID, "error", serr)
		}
		run.Status = store.StatusFailed
		return run, nil, err
	}
	run.Assembly = book.Assembly
	run.PacketCount = book.PacketCount()
	run.Status = store.StatusCompleted
	return run, book, nil
}

func generate(metadataPath, docsPath string, cfg *config.Config, logger *slog.Logger, onProgress ProgressFunc) (*types.Book, error) {
	report(onProgress, "loading inputs")
	in, err := LoadInputs(metadataPath, docsPath)
	if err != nil {
		return nil, err
	}
	return Generate(in, cfg, logger, onProgress)
}
