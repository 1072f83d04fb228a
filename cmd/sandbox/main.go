// Command sandbox runs a small farm game on top of the scenekit runtime.
package main

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/1siamBot/scenekit/engine/assets"
	"github.com/1siamBot/scenekit/engine/config"
	"github.com/1siamBot/scenekit/engine/core"
	"github.com/1siamBot/scenekit/engine/logging"
)

//go:embed assets.yaml
var defaultManifest []byte

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbosity  int
		configPath string
	)
	cmd := &cobra.Command{
		Use:          "sandbox",
		Short:        "Run the scenekit sandbox game",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if verbosity == 0 {
				verbosity = cfg.Log.Verbosity
			}
			logFile := cfg.Log.File
			if logFile == "" {
				logFile = logging.DefaultLogFile()
			}
			closer := logging.Setup(verbosity, logFile)
			defer closer.Close()
			return run(cfg, logging.GetLogger("sandbox"))
		},
	}
	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (.toml or .yaml)")
	return cmd
}

func run(cfg *config.Config, log zerolog.Logger) error {
	m, err := assets.Load(cfg.Assets.Manifest)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", cfg.Assets.Manifest).Msg("Manifest not found, using built-in sandbox assets")
		m, err = assets.Parse(defaultManifest)
	}
	if err != nil {
		return err
	}

	rt, err := core.New(cfg, logging.GetLogger("runtime"))
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
	}()
	if err := rt.Start(m); err != nil {
		return err
	}

	game, err := NewGame(rt, log)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("scenekit sandbox")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	return ebiten.RunGame(game)
}
