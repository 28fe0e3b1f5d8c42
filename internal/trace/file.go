package trace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/agent"
)

// FileSink writes the trace as indented JSON to a single file.
type FileSink struct {
	path   string
	logger *zap.Logger
}

var _ Sink = (*FileSink)(nil)

// NewFileSink returns a sink for path. A leading "~" is expanded at write time.
func NewFileSink(path string, logger *zap.Logger) *FileSink {
	return &FileSink{path: path, logger: logger.Named("trace.file")}
}

// Write replaces the file with t, creating parent directories as needed.
func (s *FileSink) Write(_ context.Context, t *agent.Trace) error {
	path, err := homedir.Expand(s.path)
	if err != nil {
		return fmt.Errorf("failed to expand trace path '%s': %w", s.path, err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write trace file: %w", err)
	}

	s.logger.Info("Run trace saved.", zap.String("path", path), zap.Int("actions", t.TotalActions))
	return nil
}
