// Package installconfig holds the installer's settings: the package sets,
// template names, and host paths a run operates on. Defaults match the display
// client distribution; an optional install.toml can override any of them.
package installconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/olialb/mqtt-display-installer/internal/messages"
)

// Packages lists the package sets the provisioner installs.
type Packages struct {
	// Baseline is always installed into the virtualenv: two GPIO backends,
	// URL validation, the MQTT client, websocket and HTTP clients, and the
	// test framework the display client ships tests for.
	Baseline []string `toml:"baseline" validate:"min=1,dive,required"`
	// AutomationAPT holds the OS-level build and image libraries the
	// screen-automation packages compile against. Installed with apt-get,
	// only when the pyautogui feature is enabled.
	AutomationAPT []string `toml:"automation_apt" validate:"min=1,dive,required"`
	// AutomationPip holds the screen-automation, serial, process-introspection,
	// and light-sensor packages installed when pyautogui is enabled.
	AutomationPip []string `toml:"automation_pip" validate:"min=1,dive,required"`
}

// Settings describes a full installer run. Relative paths are resolved
// against Dir by Load.
type Settings struct {
	// Dir is the install directory of the display client.
	Dir string `toml:"-" validate:"required"`
	// Python is the interpreter used to create the virtualenv.
	Python string `toml:"python" validate:"required"`
	// VenvDir is the virtualenv root.
	VenvDir string `toml:"venv_dir" validate:"required"`
	// UnitDir is systemd's unit directory.
	UnitDir string `toml:"unit_dir" validate:"required"`
	// Service is the unit file name the renderer produces and systemd enables.
	Service string `toml:"service" validate:"required"`
	// ConfigTemplate and ConfigFile name the app config template and artifact.
	ConfigTemplate string `toml:"config_template" validate:"required"`
	ConfigFile     string `toml:"config_file" validate:"required"`
	// UnitTemplate names the service unit template.
	UnitTemplate string `toml:"unit_template" validate:"required"`
	// HelperScript is the opaque script that fills remaining dynamic config.
	HelperScript string `toml:"helper_script" validate:"required"`

	Packages Packages `toml:"packages"`
}

// Default returns the settings for the stock display client layout rooted
// at dir.
func Default(dir string) Settings {
	return Settings{
		Dir:            dir,
		Python:         "python3",
		VenvDir:        ".venv",
		UnitDir:        "/etc/systemd/system",
		Service:        "mqttDisplayClient.service",
		ConfigTemplate: "mqttDisplayClient.ini.template",
		ConfigFile:     "mqttDisplayClient.ini",
		UnitTemplate:   "mqttDisplayClient.service.template",
		HelperScript:   "fill_display_config.py",
		Packages: Packages{
			Baseline: []string{
				"gpiozero",
				"RPi.GPIO",
				"validators",
				"paho-mqtt",
				"websocket-client",
				"requests",
				"pytest",
			},
			AutomationAPT: []string{
				"python3-dev",
				"python3-tk",
				"scrot",
				"libjpeg-dev",
				"zlib1g-dev",
				"libopenjp2-7",
			},
			AutomationPip: []string{
				"pyautogui",
				"pyserial",
				"psutil",
				"smbus2",
			},
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the settings for dir, overlaying the TOML file at path when
// path is non-empty. Unknown keys in the file are rejected.
func Load(dir string, path string) (Settings, error) {
	settings := Default(dir)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf(messages.ConfigReadFailedFmt, path, err)
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&settings); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return Settings{}, fmt.Errorf(messages.ConfigUnknownKeysFmt, path, err)
			}
			return Settings{}, fmt.Errorf(messages.ConfigInvalidFmt, path, err)
		}
	}
	if err := settings.resolvePaths(); err != nil {
		return Settings{}, err
	}
	if err := validate.Struct(settings); err != nil {
		return Settings{}, fmt.Errorf(messages.ConfigValidateFailedFmt, err)
	}
	return settings, nil
}

// resolvePaths expands ~ and anchors relative paths at the install directory.
func (s *Settings) resolvePaths() error {
	for _, field := range []*string{&s.Dir, &s.VenvDir, &s.UnitDir} {
		expanded, err := homedir.Expand(*field)
		if err != nil {
			return fmt.Errorf(messages.ConfigExpandPathFailedFmt, *field, err)
		}
		*field = expanded
	}
	if !filepath.IsAbs(s.VenvDir) {
		s.VenvDir = filepath.Join(s.Dir, s.VenvDir)
	}
	return nil
}

// Pip returns the pip binary inside the virtualenv.
func (s Settings) Pip() string {
	return filepath.Join(s.VenvDir, "bin", "pip")
}

// VenvPython returns the python binary inside the virtualenv.
func (s Settings) VenvPython() string {
	return filepath.Join(s.VenvDir, "bin", "python")
}

// ConfigTemplatePath returns the absolute path of the app config template.
func (s Settings) ConfigTemplatePath() string {
	return filepath.Join(s.Dir, s.ConfigTemplate)
}

// ConfigFilePath returns the absolute path of the rendered app config.
func (s Settings) ConfigFilePath() string {
	return filepath.Join(s.Dir, s.ConfigFile)
}

// UnitTemplatePath returns the absolute path of the unit template.
func (s Settings) UnitTemplatePath() string {
	return filepath.Join(s.Dir, s.UnitTemplate)
}

// UnitFilePath returns the absolute path of the rendered unit file before it
// is moved into the unit directory.
func (s Settings) UnitFilePath() string {
	return filepath.Join(s.Dir, s.Service)
}

// InstalledUnitPath returns the unit file's final path inside the unit
// directory.
func (s Settings) InstalledUnitPath() string {
	return filepath.Join(s.UnitDir, s.Service)
}
