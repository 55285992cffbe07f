package cmd

import (
	"os"

	"github.com/bastiangx/wordlens/pkg/dictionary"
	"github.com/bastiangx/wordlens/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	watchDicts bool
	codecName  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stdin/stdout IPC server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&watchDicts, "watch", false, "Reload dictionaries when their files change")
	serveCmd.Flags().StringVar(&codecName, "codec", "", "Wire codec: msgpack or json (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, path, err := setup()
	if err != nil {
		return err
	}
	if codecName != "" {
		cfg.Server.Codec = codecName
	}
	ctx := cmd.Context()

	manager, rl, err := loadManager(ctx, cfg)
	if err != nil {
		return err
	}
	if watchDicts || cfg.Dict.Watch {
		rl.OnReload(func(stats dictionary.LoadStats, err error) {
			log.Infof("Dictionaries reloaded: %d patterns", stats.Patterns)
		})
		if err := rl.Watch(ctx); err != nil {
			return err
		}
		defer rl.Stop()
	}

	srv, err := server.NewServer(manager, dictionary.NewLoader(cfg.Dict.PhraseMarker, cfg.Dict.Workers), cfg, path)
	if err != nil {
		return err
	}
	log.Info("status: ready", "pid", os.Getpid(), "codec", cfg.Server.Codec)
	return srv.Start(ctx)
}
