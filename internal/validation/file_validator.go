package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// MaxProjectFileBytes caps the size of a project definition file
const MaxProjectFileBytes = 1 << 20

// FileKind is the encoding of an input file, derived from its extension
type FileKind string

const (
	KindYAML FileKind = "yaml"
	KindJSON FileKind = "json"
)

// FileValidator checks the files the command line tools read and write
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("file does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateProjectFile checks a project definition and reports its encoding
func (v *FileValidator) ValidateProjectFile(path string) (FileKind, error) {
	kind, err := kindOf(path)
	if err != nil {
		v.logger.Error("unsupported project file",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return "", err
	}

	if err := v.ValidateFile(path); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("project file %s is empty", path)
	}
	if info.Size() > MaxProjectFileBytes {
		v.logger.Error("project file too large",
			slog.String("file", path),
			slog.Int64("size", info.Size()))
		return "", fmt.Errorf("project file %s exceeds %d bytes", path, MaxProjectFileBytes)
	}

	return kind, nil
}

// ValidateTablesFile checks a scoring tables override, which must be YAML
func (v *FileValidator) ValidateTablesFile(path string) error {
	kind, err := kindOf(path)
	if err != nil || kind != KindYAML {
		return fmt.Errorf("tables file %s must be YAML (.yaml or .yml)", path)
	}
	return v.ValidateFile(path)
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateOutputFile checks that path carries the extension of the report
// format and that its directory is writable
func (v *FileValidator) ValidateOutputFile(path, extension string) error {
	if ext := strings.ToLower(filepath.Ext(path)); extension != "" && ext != extension {
		v.logger.Error("output file extension does not match format",
			slog.String("file", path),
			slog.String("expected", extension))
		return fmt.Errorf("output file %s must end in %s", path, extension)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	return v.ValidateOutputDirectory(filepath.Dir(path))
}

func kindOf(path string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return KindYAML, nil
	case ".json":
		return KindJSON, nil
	default:
		return "", fmt.Errorf("file %s must be YAML or JSON (extension: %s)", path, filepath.Ext(path))
	}
}
