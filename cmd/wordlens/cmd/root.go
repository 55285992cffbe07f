// Package cmd holds the wordlens cobra commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/bastiangx/wordlens/internal/logger"
	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/bastiangx/wordlens/pkg/config"
	"github.com/bastiangx/wordlens/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dictPaths  []string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:           "wordlens",
	Short:         "WordLens finds dictionary words and phrases in text",
	Long:          "Annotates running text with dictionary matches, phrases first, without overlapping spans.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml")
	rootCmd.PersistentFlags().StringSliceVar(&dictPaths, "dict", nil, "Dictionary files or directories (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Toggle debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads config and configures logging for a command.
func setup() (*config.Config, string, error) {
	cfg, path, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		return nil, "", err
	}
	level := cfg.Log.Level
	if debugMode {
		level = "debug"
	}
	logger.Setup(level, cfg.Log.Format, cfg.Log.Timestamp || debugMode)
	if len(dictPaths) > 0 {
		cfg.Dict.Paths = dictPaths
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(path))
	return cfg, path, nil
}

// resolvePaths maps configured dictionary paths to existing locations.
func resolvePaths(paths []string) []string {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
		return paths
	}
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if utils.FileExists(p) && !utils.IsDir(p) {
			resolved = append(resolved, p)
			continue
		}
		resolved = append(resolved, pr.GetDataDir(p, dictionary.HasDictionaries))
	}
	return resolved
}

// loadManager builds a manager from the configured dictionaries.
func loadManager(ctx context.Context, cfg *config.Config) (*dictionary.Manager, *dictionary.RuntimeLoader, error) {
	manager := dictionary.NewManager(dictionary.WithCacheSize(cfg.Server.CacheSize))
	loader := dictionary.NewLoader(cfg.Dict.PhraseMarker, cfg.Dict.Workers)
	paths := resolvePaths(cfg.Dict.Paths)
	log.Debugf("Dictionary paths: %v", paths)

	rl := dictionary.NewRuntimeLoader(manager, loader, paths, cfg.Dict.Debounce())
	stats, err := rl.Reload(ctx)
	if err != nil {
		if !manager.Ready() {
			return nil, nil, fmt.Errorf("failed to load dictionaries: %w", err)
		}
		log.Warnf("Some dictionaries failed to load: %v", err)
	}
	log.Debugf("Init done: %d patterns in %v", stats.Patterns, stats.Duration)
	return manager, rl, nil
}
