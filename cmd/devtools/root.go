package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/1siamBot/scenekit/engine/config"
	"github.com/1siamBot/scenekit/engine/logging"
)

type rootOptions struct {
	verbosity  int
	configPath string

	cfg    *config.Config
	logOut io.Closer
}

// closeLog releases the log file opened by the last command, if any.
func (o *rootOptions) closeLog() error {
	if o.logOut == nil {
		return nil
	}
	err := o.logOut.Close()
	o.logOut = nil
	return err
}

// newRootCmd builds the devtools command tree
func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "scenekit-devtools",
		Short: "Inspect scenekit save slots and asset manifests",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			verbosity := opts.verbosity
			if verbosity == 0 {
				verbosity = cfg.Log.Verbosity
			}
			console := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}
			opts.logOut = logging.SetupWriter(verbosity, console, cfg.Log.File)
			opts.cfg = cfg
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (.toml or .yaml)")

	root.AddCommand(newSlotsCmd(opts))
	root.AddCommand(newAssetsCmd(opts))
	return root, opts
}

// execute runs root and closes the log file whether or not the command
// failed.
func execute(root *cobra.Command, opts *rootOptions) (err error) {
	defer func() {
		if cerr := opts.closeLog(); err == nil {
			err = cerr
		}
	}()
	return root.Execute()
}
