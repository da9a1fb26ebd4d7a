package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the application paths. Every path hangs off BaseDir.
type Paths struct {
	BaseDir    string
	ConfigsDir string
	LogsDir    string
	ReportsDir string
	TablesFile string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return PathsFrom(filepath.Dir(exe)), nil
}

// PathsFrom builds the path layout under baseDir
func PathsFrom(baseDir string) *Paths {
	return &Paths{
		BaseDir:    baseDir,
		ConfigsDir: filepath.Join(baseDir, "configs"),
		LogsDir:    filepath.Join(baseDir, "logs"),
		ReportsDir: filepath.Join(baseDir, DefaultReportsDir),
		TablesFile: filepath.Join(baseDir, DefaultTablesFile),
	}
}

// EnsureDirectories creates the writable directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, dir := range []string{p.LogsDir, p.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetReportPath returns the path of a report file, keeping absolute names as given
func (p *Paths) GetReportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path of a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// ResolveTablesFile returns the engine tables file to load, or "" to use the
// built-in defaults. An explicit path must exist.
func (p *Paths) ResolveTablesFile(explicit string) (string, error) {
	if explicit != "" {
		if !FileExists(explicit) {
			return "", fmt.Errorf("engine tables file not found: %s", explicit)
		}
		return explicit, nil
	}
	for _, candidate := range []string{DefaultTablesFile, p.TablesFile} {
		if FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
