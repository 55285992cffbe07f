package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppDirName is the directory name used under the platform config root.
const AppDirName = "wordlens"

// PathResolver resolves dictionary and config locations relative to the
// executable, the working directory and the user config dir.
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver creates a resolver for the running executable.
func NewPathResolver() (*PathResolver, error) {
	execDir, err := GetExecutableDir()
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(execDir); err == nil {
		execDir = resolved
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: execDir,
		configDir:     platformConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", execDir, pr.configDir)
	return pr, nil
}

// platformConfigDir returns the config directory for the platform
func platformConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppDirName)
		}
		return filepath.Join(homeDir, ".config", AppDirName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppDirName)
	default:
		return filepath.Join(homeDir, ".config", AppDirName)
	}
}

// GetDataDir resolves a dictionary directory. Candidates, in order: the path
// itself, relative to the executable, relative to the working directory, and
// <configDir>/dicts. The first candidate accepted by valid wins; when none is
// accepted the path is returned unchanged.
func (pr *PathResolver) GetDataDir(path string, valid func(dir string) bool) string {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.Join(pr.executableDir, path))
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, path))
		}
	}
	candidates = append(candidates, filepath.Join(pr.configDir, "dicts"))

	for _, dir := range candidates {
		if IsDir(dir) && (valid == nil || valid(dir)) {
			log.Debugf("Found dictionary directory: %s", dir)
			return dir
		}
		log.Debugf("Dictionary directory candidate not valid: %s", dir)
	}
	return path
}

// ConfigDir returns the platform config directory for the app.
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// ExecutableDir returns the directory of the running binary.
func (pr *PathResolver) ExecutableDir() string {
	return pr.executableDir
}
