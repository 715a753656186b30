// Package installer composes the provisioning, rendering, and registration
// phases into a single forward pass. The run is strictly linear and stops at
// the first failing step; nothing is retried or rolled back.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/olialb/mqtt-display-installer/internal/execx"
	"github.com/olialb/mqtt-display-installer/internal/features"
	"github.com/olialb/mqtt-display-installer/internal/installconfig"
	"github.com/olialb/mqtt-display-installer/internal/messages"
	"github.com/olialb/mqtt-display-installer/internal/provision"
	"github.com/olialb/mqtt-display-installer/internal/render"
	"github.com/olialb/mqtt-display-installer/internal/sysd"
)

// Options controls a single installer run.
type Options struct {
	Settings  installconfig.Settings
	Selection features.Selection
	// DryRun prints external commands and file operations without executing.
	DryRun bool
	// UseSystemctl forces the systemctl-based registrar over D-Bus.
	UseSystemctl bool

	Logger *log.Logger
	Stdout io.Writer
	Stderr io.Writer

	// Runner and Manager override the real implementations in tests.
	Runner  execx.Runner
	Manager sysd.Manager
}

// Seams for tests; the real run needs root and a system bus.
var (
	geteuid        = os.Geteuid
	connectDBus    = func(ctx context.Context) (sysd.Manager, error) { return sysd.ConnectDBus(ctx) }
	currentContext = render.CurrentContext
)

type step struct {
	name string
	run  func(context.Context) error
}

func (o Options) normalize() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = log.New(o.Stderr)
	}
	return o
}

// Run executes the installation sequence: provision environment, render
// configuration, register service. It returns the first error encountered;
// completed phases are not rolled back.
func Run(ctx context.Context, opts Options) error {
	opts = opts.normalize()

	// System-level package installs and the unit directory need root. A dry
	// run touches nothing, so it is allowed for any user.
	if !opts.DryRun && geteuid() != 0 {
		return errors.New(messages.InstallerNeedRoot)
	}

	runner := opts.Runner
	if runner == nil {
		if opts.DryRun {
			runner = execx.DryRunner{Out: opts.Stdout}
		} else {
			runner = execx.ExecRunner{Stdout: opts.Stdout, Stderr: opts.Stderr}
		}
	}

	manager := opts.Manager
	if manager == nil {
		switch {
		case opts.DryRun, opts.UseSystemctl:
			manager = sysd.SystemctlManager{Runner: runner}
		default:
			dbusManager, err := connectDBus(ctx)
			if err != nil {
				opts.Logger.Warn("system bus unavailable, falling back to systemctl", "err", err)
				manager = sysd.SystemctlManager{Runner: runner}
			} else {
				manager = dbusManager
			}
		}
	}
	defer func() {
		_ = manager.Close()
	}()

	provisioner := &provision.Provisioner{
		Runner:   runner,
		Settings: opts.Settings,
		Log:      opts.Logger,
	}
	renderer := &render.Renderer{
		Runner:   runner,
		Settings: opts.Settings,
		Log:      opts.Logger,
		DryRun:   opts.DryRun,
		DryOut:   opts.Stdout,
	}
	registrar := &sysd.Registrar{
		Manager:  manager,
		Settings: opts.Settings,
		Log:      opts.Logger,
		DryRun:   opts.DryRun,
		DryOut:   opts.Stdout,
	}

	steps := []step{
		{"provision environment", func(ctx context.Context) error {
			return provisioner.Run(ctx, opts.Selection)
		}},
		{"render configuration", func(ctx context.Context) error {
			tc, err := currentContext(opts.Settings.Dir)
			if err != nil {
				return err
			}
			return renderer.Run(ctx, tc)
		}},
		{"register service", registrar.Run},
	}
	for _, st := range steps {
		opts.Logger.Info(st.name)
		if err := st.run(ctx); err != nil {
			return fmt.Errorf(messages.InstallerStepFailedFmt, st.name, err)
		}
	}
	return nil
}
