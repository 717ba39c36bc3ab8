package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomheaton/turbo/internal/config"
	"github.com/tomheaton/turbo/internal/logger"
)

// app carries the resolved configuration and logger shared by every
// subcommand's RunE closure, the way cmdutil.CmdBase does for the
// commands it drives.
type app struct {
	verbosity int
	cfg       *config.Config
	log       *logger.ConcurrentLogger
}

func (a *app) resolve() error {
	cfg, err := config.New(a.verbosity, "cachearchive")
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewConcurrent(logger.New())
	return nil
}

// logError mirrors cmdutil.CmdBase.LogError: it logs at hclog error level
// and returns the formatted error so RunE can hand it back to cobra.
func (a *app) logError(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	if a.cfg != nil {
		a.cfg.Logger.Error("error", "err", err)
	}
	if a.log != nil {
		return a.log.Errorf(format, args...)
	}
	return err
}

// prefixed tags a subcommand's status lines with its own name, the way the
// teacher tags per-task build output so interleaved command output stays
// attributable.
func (a *app) prefixed(name string) *logger.PrefixedLogger {
	return logger.NewPrefixed(fmt.Sprintf("%s: ", name), "", "", "")
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "cachearchive",
		Short:         "Pack and restore reproducible build-output archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.resolve()
		},
	}

	root.PersistentFlags().CountVarP(&a.verbosity, "verbosity", "v", "verbosity level, repeatable (-v, -vv, -vvv)")

	root.AddCommand(newPackCmd(a))
	root.AddCommand(newRestoreCmd(a))
	root.AddCommand(newInspectCmd(a))

	return root
}
