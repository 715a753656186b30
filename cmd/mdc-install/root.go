package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/olialb/mqtt-display-installer/internal/features"
	"github.com/olialb/mqtt-display-installer/internal/installconfig"
	"github.com/olialb/mqtt-display-installer/internal/installer"
	"github.com/olialb/mqtt-display-installer/internal/messages"
	"github.com/olialb/mqtt-display-installer/internal/terminal"
)

var installerRun = installer.Run

func newRootCmd() *cobra.Command {
	var featureValues []string
	var dir string
	var configPath string
	var dryRun bool
	var useSystemctl bool

	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !terminal.IsInteractive() {
				color.NoColor = true
			}
			root := dir
			if root == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				root = cwd
			}
			root, err := filepath.Abs(root)
			if err != nil {
				return err
			}

			settings, err := installconfig.Load(root, configPath)
			if err != nil {
				return err
			}
			sel := features.Parse(featureValues, cmd.OutOrStdout())

			logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
				ReportTimestamp: true,
				TimeFormat:      time.Kitchen,
				Prefix:          messages.RootUse,
			})
			err = installerRun(cmd.Context(), installer.Options{
				Settings:     settings,
				Selection:    sel,
				DryRun:       dryRun,
				UseSystemctl: useSystemctl,
				Logger:       logger,
				Stdout:       cmd.OutOrStdout(),
				Stderr:       cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			printDone(cmd.OutOrStdout(), settings.Service)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&featureValues, "feature", "f", nil, messages.FlagFeature)
	cmd.Flags().StringVar(&dir, "dir", "", messages.FlagDir)
	cmd.Flags().StringVar(&configPath, "config", "", messages.FlagConfig)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, messages.FlagDryRun)
	cmd.Flags().BoolVar(&useSystemctl, "use-systemctl", false, messages.FlagUseSystemctl)
	return cmd
}

// printDone prints the operator instructions for the installed service.
func printDone(out io.Writer, service string) {
	_, _ = color.New(color.FgGreen, color.Bold).Fprintln(out, messages.DoneHeader)
	_, _ = fmt.Fprintf(out, messages.DoneStartServiceFmt+"\n", service)
	_, _ = fmt.Fprintf(out, messages.DoneStopServiceFmt+"\n", service)
	_, _ = fmt.Fprintf(out, messages.DoneAutostartFmt+"\n", service)
}
