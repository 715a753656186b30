package sysd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/olialb/mqtt-display-installer/internal/fsutil"
	"github.com/olialb/mqtt-display-installer/internal/installconfig"
	"github.com/olialb/mqtt-display-installer/internal/messages"
)

// unitMode is the permission mode of installed unit files.
const unitMode os.FileMode = 0o644

// Registrar moves the rendered unit into the unit directory and enables it.
// The four steps run unconditionally in order: install file, set mode,
// reload, enable. The first failure aborts; completed steps are not undone.
type Registrar struct {
	Manager  Manager
	Settings installconfig.Settings
	Log      *log.Logger
	// DryRun reports the file installation instead of performing it. The
	// Manager still runs so a dry run prints the systemctl sequence.
	DryRun bool
	// DryOut receives dry-run reports.
	DryOut io.Writer
}

// Run performs the registration sequence.
func (r *Registrar) Run(ctx context.Context) error {
	src := r.Settings.UnitFilePath()
	dst := r.Settings.InstalledUnitPath()

	if r.DryRun {
		if r.DryOut != nil {
			_, _ = fmt.Fprintf(r.DryOut, messages.SysdDryRunInstallFmt, src, dst)
		}
	} else {
		r.Log.Info("installing unit file", "unit", dst)
		if err := fsutil.MoveFile(src, dst); err != nil {
			return fmt.Errorf(messages.SysdMoveUnitFailedFmt, src, r.Settings.UnitDir, err)
		}
		if err := os.Chmod(dst, unitMode); err != nil {
			return fmt.Errorf(messages.SysdChmodUnitFailedFmt, dst, err)
		}
	}

	r.Log.Info("reloading systemd unit database")
	if err := r.Manager.Reload(ctx); err != nil {
		return err
	}
	r.Log.Info("enabling service for autostart", "unit", r.Settings.Service)
	return r.Manager.Enable(ctx, r.Settings.Service)
}
