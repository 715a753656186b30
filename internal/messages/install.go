package messages

// Installer, provisioning, rendering, and registration messages.
const (
	// InstallerNeedRoot indicates the run requires elevated privileges.
	InstallerNeedRoot = "this step requires root privileges; re-run with sudo (or use --dry-run)"
	// InstallerStepFailedFmt wraps a failing step with its name.
	InstallerStepFailedFmt = "%s: %w"

	// Config messages.
	ConfigReadFailedFmt       = "failed to read %s: %w"
	ConfigInvalidFmt          = "invalid install config %s: %w"
	ConfigUnknownKeysFmt      = "install config %s contains unrecognized keys: %w"
	ConfigValidateFailedFmt   = "install config validation failed: %w"
	ConfigExpandPathFailedFmt = "failed to expand path %s: %w"

	// Exec messages.
	ExecCommandFailedFmt = "command %s failed: %w"
	ExecDryRunFmt        = "dry-run: %s\n"

	// Provisioning messages.
	ProvisionVenvConflictFmt   = "%s exists but is not a virtualenv; remove it or point venv_dir elsewhere"
	ProvisionVenvCreateFailFmt = "failed to create virtualenv at %s: %w"
	ProvisionAptFailedFmt      = "failed to install OS packages %v: %w"
	ProvisionPipFailedFmt      = "failed to install packages %v: %w"

	// Render messages.
	RenderMissingTemplateFmt = "template %s is missing: %w"
	RenderParseFailedFmt     = "failed to parse template %s: %w"
	RenderExecFailedFmt      = "failed to render template %s: %w"
	RenderWriteFailedFmt     = "failed to write %s: %w"
	RenderResolveUserFailed  = "failed to resolve current user: %w"
	RenderHelperFailedFmt    = "config helper %s failed: %w"
	RenderDryRunFmt          = "dry-run: render %s -> %s\n"

	// Service registration messages.
	SysdMoveUnitFailedFmt  = "failed to install unit file %s into %s: %w"
	SysdChmodUnitFailedFmt = "failed to set permissions on %s: %w"
	SysdReloadFailedFmt    = "failed to reload systemd unit database: %w"
	SysdEnableFailedFmt    = "failed to enable unit %s: %w"
	SysdConnectFailedFmt   = "failed to connect to the system bus: %w"
	SysdDryRunInstallFmt   = "dry-run: install %s -> %s (mode 0644)\n"
)
