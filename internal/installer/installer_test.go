package installer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/olialb/mqtt-display-installer/internal/features"
	"github.com/olialb/mqtt-display-installer/internal/installconfig"
	"github.com/olialb/mqtt-display-installer/internal/render"
	"github.com/olialb/mqtt-display-installer/internal/sysd"
)

type recordedCommand struct {
	name string
	args []string
}

type fakeRunner struct {
	commands []recordedCommand
	failName string
}

func (r *fakeRunner) Run(_ context.Context, _ string, name string, args ...string) error {
	r.commands = append(r.commands, recordedCommand{name: name, args: args})
	if r.failName != "" && name == r.failName {
		return errors.New("simulated failure")
	}
	return nil
}

type fakeManager struct {
	calls []string
}

func (m *fakeManager) Reload(context.Context) error {
	m.calls = append(m.calls, "reload")
	return nil
}

func (m *fakeManager) Enable(_ context.Context, unit string) error {
	m.calls = append(m.calls, "enable "+unit)
	return nil
}

func (m *fakeManager) Close() error {
	m.calls = append(m.calls, "close")
	return nil
}

func asRoot(t *testing.T) {
	t.Helper()
	orig := geteuid
	geteuid = func() int { return 0 }
	t.Cleanup(func() { geteuid = orig })
}

func fixedContext(t *testing.T) {
	t.Helper()
	orig := currentContext
	currentContext = func(dir string) (render.Context, error) {
		return render.Context{User: "pi", Dir: dir}, nil
	}
	t.Cleanup(func() { currentContext = orig })
}

func testSettings(t *testing.T) installconfig.Settings {
	t.Helper()
	settings, err := installconfig.Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	settings.UnitDir = t.TempDir()
	return settings
}

func writeTemplates(t *testing.T, settings installconfig.Settings) {
	t.Helper()
	ini := "[general]\nuser = {{.User}}\npath = {{.Dir}}\n"
	unit := "[Service]\nUser={{.User}}\nWorkingDirectory={{.Dir}}\n"
	if err := os.WriteFile(settings.ConfigTemplatePath(), []byte(ini), 0o644); err != nil {
		t.Fatalf("write config template: %v", err)
	}
	if err := os.WriteFile(settings.UnitTemplatePath(), []byte(unit), 0o644); err != nil {
		t.Fatalf("write unit template: %v", err)
	}
}

func baseOptions(settings installconfig.Settings, runner *fakeRunner, mgr *fakeManager) Options {
	opts := Options{
		Settings:  settings,
		Selection: features.Default(),
		Logger:    log.New(io.Discard),
		Stdout:    io.Discard,
		Stderr:    io.Discard,
		Runner:    runner,
	}
	if mgr != nil {
		opts.Manager = mgr
	}
	return opts
}

func TestRunFullSequence(t *testing.T) {
	asRoot(t)
	fixedContext(t)
	settings := testSettings(t)
	writeTemplates(t, settings)
	runner := &fakeRunner{}
	mgr := &fakeManager{}

	if err := Run(context.Background(), baseOptions(settings, runner, mgr)); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// venv creation, baseline pip install, config helper.
	if len(runner.commands) != 3 {
		t.Fatalf("expected 3 commands, got %+v", runner.commands)
	}
	if runner.commands[0].name != "python3" {
		t.Fatalf("expected venv creation first, got %+v", runner.commands[0])
	}
	if runner.commands[2].name != settings.VenvPython() {
		t.Fatalf("expected config helper last, got %+v", runner.commands[2])
	}

	ini, err := os.ReadFile(settings.ConfigFilePath())
	if err != nil {
		t.Fatalf("read rendered config: %v", err)
	}
	if !strings.Contains(string(ini), "user = pi") {
		t.Fatalf("unexpected rendered config %q", string(ini))
	}

	if _, err := os.Stat(settings.InstalledUnitPath()); err != nil {
		t.Fatalf("expected installed unit file: %v", err)
	}
	want := []string{"reload", "enable mqttDisplayClient.service", "close"}
	if len(mgr.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, mgr.calls)
	}
	for i := range want {
		if mgr.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, mgr.calls)
		}
	}
}

func TestRunProvisionFailureSkipsLaterSteps(t *testing.T) {
	asRoot(t)
	fixedContext(t)
	settings := testSettings(t)
	writeTemplates(t, settings)
	runner := &fakeRunner{failName: settings.Pip()}
	mgr := &fakeManager{}

	err := Run(context.Background(), baseOptions(settings, runner, mgr))
	if err == nil {
		t.Fatalf("expected provisioning failure")
	}
	if !strings.Contains(err.Error(), "provision environment") {
		t.Fatalf("expected step name in error, got %v", err)
	}
	if _, statErr := os.Stat(settings.ConfigFilePath()); !os.IsNotExist(statErr) {
		t.Fatalf("expected no rendered config after provisioning failure")
	}
	if _, statErr := os.Stat(settings.InstalledUnitPath()); !os.IsNotExist(statErr) {
		t.Fatalf("expected no installed unit after provisioning failure")
	}
	for _, call := range mgr.calls {
		if call == "reload" || strings.HasPrefix(call, "enable") {
			t.Fatalf("expected no service registration, got %v", mgr.calls)
		}
	}
}

func TestRunMissingTemplateSkipsRegistration(t *testing.T) {
	asRoot(t)
	fixedContext(t)
	settings := testSettings(t)
	// No templates written at all.
	runner := &fakeRunner{}
	mgr := &fakeManager{}

	err := Run(context.Background(), baseOptions(settings, runner, mgr))
	if err == nil {
		t.Fatalf("expected rendering failure")
	}
	if !strings.Contains(err.Error(), "render configuration") {
		t.Fatalf("expected step name in error, got %v", err)
	}
	for _, call := range mgr.calls {
		if call != "close" {
			t.Fatalf("expected no registration calls, got %v", mgr.calls)
		}
	}
}

func TestRunRequiresRoot(t *testing.T) {
	orig := geteuid
	geteuid = func() int { return 1000 }
	t.Cleanup(func() { geteuid = orig })

	settings := testSettings(t)
	err := Run(context.Background(), baseOptions(settings, &fakeRunner{}, &fakeManager{}))
	if err == nil {
		t.Fatalf("expected root requirement error")
	}
	if !strings.Contains(err.Error(), "root") {
		t.Fatalf("expected root error, got %v", err)
	}
}

func TestRunDryRunExecutesNothing(t *testing.T) {
	fixedContext(t)
	// Deliberately not root: dry runs are allowed for any user.
	orig := geteuid
	geteuid = func() int { return 1000 }
	t.Cleanup(func() { geteuid = orig })

	settings := testSettings(t)
	writeTemplates(t, settings)
	var out bytes.Buffer
	opts := Options{
		Settings:  settings,
		Selection: features.Parse([]string{"pyautogui"}, io.Discard),
		DryRun:    true,
		Logger:    log.New(io.Discard),
		Stdout:    &out,
		Stderr:    io.Discard,
	}

	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	report := out.String()
	for _, want := range []string{"apt-get install -y", "venv", "systemctl daemon-reload", "systemctl enable"} {
		if !strings.Contains(report, want) {
			t.Fatalf("expected dry-run report to contain %q, got %q", want, report)
		}
	}
	// Nothing was created anywhere.
	if _, err := os.Stat(settings.VenvDir); !os.IsNotExist(err) {
		t.Fatalf("expected no virtualenv in dry run")
	}
	if _, err := os.Stat(settings.ConfigFilePath()); !os.IsNotExist(err) {
		t.Fatalf("expected no rendered config in dry run")
	}
	entries, err := os.ReadDir(settings.UnitDir)
	if err != nil {
		t.Fatalf("read unit dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty unit dir in dry run, got %v", entries)
	}
}

func TestRunUsesSystemctlManagerWhenForced(t *testing.T) {
	asRoot(t)
	fixedContext(t)
	settings := testSettings(t)
	writeTemplates(t, settings)
	runner := &fakeRunner{}
	opts := baseOptions(settings, runner, nil)
	opts.UseSystemctl = true

	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	var sawReload, sawEnable bool
	for _, cmd := range runner.commands {
		if cmd.name == "systemctl" {
			if len(cmd.args) > 0 && cmd.args[0] == "daemon-reload" {
				sawReload = true
			}
			if len(cmd.args) > 1 && cmd.args[0] == "enable" {
				sawEnable = true
			}
		}
	}
	if !sawReload || !sawEnable {
		t.Fatalf("expected systemctl daemon-reload and enable, got %+v", runner.commands)
	}
}

func TestRunFallsBackToSystemctlWhenBusUnavailable(t *testing.T) {
	asRoot(t)
	fixedContext(t)
	origConnect := connectDBus
	connectDBus = func(context.Context) (sysd.Manager, error) {
		return nil, errors.New("no bus")
	}
	t.Cleanup(func() { connectDBus = origConnect })

	settings := testSettings(t)
	writeTemplates(t, settings)
	runner := &fakeRunner{}
	opts := baseOptions(settings, runner, nil)

	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	var sawSystemctl bool
	for _, cmd := range runner.commands {
		if cmd.name == "systemctl" {
			sawSystemctl = true
		}
	}
	if !sawSystemctl {
		t.Fatalf("expected systemctl fallback, got %+v", runner.commands)
	}
}
