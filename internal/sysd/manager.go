// Package sysd registers the rendered service unit with systemd: it installs
// the unit file, reloads the unit database, and enables the unit for boot.
package sysd

import (
	"context"
	"errors"
	"fmt"

	sdbus "github.com/coreos/go-systemd/v22/dbus"
	godbus "github.com/godbus/dbus/v5"

	"github.com/olialb/mqtt-display-installer/internal/execx"
	"github.com/olialb/mqtt-display-installer/internal/messages"
)

// Manager is the narrow slice of the service manager the registrar needs:
// reload the unit database and enable a unit for autostart. Implementations
// talk native D-Bus or shell out to systemctl.
type Manager interface {
	Reload(ctx context.Context) error
	Enable(ctx context.Context, unit string) error
	Close() error
}

// DBusManager drives systemd over the system bus.
type DBusManager struct {
	conn *sdbus.Conn
}

// ConnectDBus opens a connection to the system instance of systemd.
func ConnectDBus(ctx context.Context) (*DBusManager, error) {
	conn, err := sdbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf(messages.SysdConnectFailedFmt, err)
	}
	return &DBusManager{conn: conn}, nil
}

// Reload asks systemd to reload its unit database (daemon-reload).
func (m *DBusManager) Reload(ctx context.Context) error {
	if err := m.conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf(messages.SysdReloadFailedFmt, describeDBusError(err))
	}
	return nil
}

// Enable enables the named unit for automatic start at boot.
func (m *DBusManager) Enable(ctx context.Context, unit string) error {
	_, _, err := m.conn.EnableUnitFilesContext(ctx, []string{unit}, false, true)
	if err != nil {
		return fmt.Errorf(messages.SysdEnableFailedFmt, unit, describeDBusError(err))
	}
	return nil
}

// Close releases the D-Bus connection.
func (m *DBusManager) Close() error {
	m.conn.Close()
	return nil
}

// describeDBusError surfaces the D-Bus error name (for example
// org.freedesktop.DBus.Error.AccessDenied) alongside the message.
func describeDBusError(err error) error {
	var dbusErr godbus.Error
	if errors.As(err, &dbusErr) {
		return fmt.Errorf("%s: %w", dbusErr.Name, err)
	}
	return err
}

// SystemctlManager shells out to systemctl. It is used when the system bus is
// unreachable and for dry runs, where its Runner prints instead of executing.
type SystemctlManager struct {
	Runner execx.Runner
}

// Reload runs systemctl daemon-reload.
func (m SystemctlManager) Reload(ctx context.Context) error {
	if err := m.Runner.Run(ctx, "", "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf(messages.SysdReloadFailedFmt, err)
	}
	return nil
}

// Enable runs systemctl enable for the named unit.
func (m SystemctlManager) Enable(ctx context.Context, unit string) error {
	if err := m.Runner.Run(ctx, "", "systemctl", "enable", unit); err != nil {
		return fmt.Errorf(messages.SysdEnableFailedFmt, unit, err)
	}
	return nil
}

// Close is a no-op; systemctl holds no connection.
func (m SystemctlManager) Close() error {
	return nil
}
