package messages

// CLI messages for user-facing commands and flags.
const (
	// RootUse is the CLI command name.
	RootUse = "mdc-install"
	// RootShort is the short description for the root command.
	RootShort = "Install the MQTT display client as an auto-starting systemd service"
	// RootLong describes what a full run does.
	RootLong = "mdc-install provisions a Python virtualenv for the MQTT display client,\n" +
		"installs base and feature-dependent packages, renders the application config\n" +
		"and systemd unit from their templates, and registers the unit with systemd."

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// Flag descriptions.
	FlagFeature      = "Enable an optional feature (pyautogui, bh1750, haDiscover); repeatable"
	FlagDir          = "Install directory of the display client (default: current directory)"
	FlagConfig       = "Path to an install.toml overriding package sets and paths"
	FlagDryRun       = "Print external commands and file operations without executing them"
	FlagUseSystemctl = "Register the service by shelling out to systemctl instead of D-Bus"

	// Feature notices printed while parsing flags.
	FeaturePyAutoGUINotice  = "Feature enabled: pyautogui screen automation"
	FeatureBH1750Notice     = "Feature enabled: bh1750 ambient light sensor"
	FeatureHADiscoverNotice = "Feature enabled: home assistant auto discovery"
	// FeatureBacklightAliasNotice flags the historical flag name: '-f backlight'
	// always enabled the bh1750 sensor, never backlight control (which is on by
	// default and needs no extra install).
	FeatureBacklightAliasNotice = "Note: '-f backlight' is a deprecated alias of '-f bh1750'; enabling the bh1750 ambient light sensor"

	// AbortBanner is printed to stderr on any failure.
	AbortBanner = "Abort!! An error occurred"
	// RunFailedFmt prefixes the failing step's error above the banner.
	RunFailedFmt = "mdc-install: %v\n"

	// Operator instructions printed after a successful run.
	DoneHeader          = "Installation complete."
	DoneStartServiceFmt = "Start the display client with:  sudo systemctl start %s"
	DoneStopServiceFmt  = "Stop it with:                   sudo systemctl stop %s"
	DoneAutostartFmt    = "%s is enabled and starts automatically on boot."
)
