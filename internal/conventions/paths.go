package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default stylepost data directory name (relative to home).
	DefaultDataDir = ".stylepost"
	// ScreenshotsDir is the subdirectory for failure screenshots.
	ScreenshotsDir = "screenshots"
	// DBFile is the SQLite database filename.
	DBFile = "stylepost.db"
	// SelectorsFile is the default locator table filename.
	SelectorsFile = "selectors.yaml"
)

// DBPath returns the full path to the SQLite database file.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// TaskScreenshotDir returns the screenshot directory for a specific task.
func TaskScreenshotDir(dataDir, taskID string) string {
	return filepath.Join(dataDir, ScreenshotsDir, taskID)
}
