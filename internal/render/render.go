// Package render materializes the application config and systemd unit from
// their templates by substituting runtime values.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"text/template"

	"github.com/charmbracelet/log"

	"github.com/olialb/mqtt-display-installer/internal/execx"
	"github.com/olialb/mqtt-display-installer/internal/fsutil"
	"github.com/olialb/mqtt-display-installer/internal/installconfig"
	"github.com/olialb/mqtt-display-installer/internal/messages"
)

// Context is the set of runtime values available to templates. It is computed
// fresh at render time and never cached.
type Context struct {
	// User is the invoking user's login name.
	User string
	// Dir is the install directory of the display client.
	Dir string
}

// CurrentContext resolves the context from the running process.
func CurrentContext(dir string) (Context, error) {
	u, err := user.Current()
	if err != nil {
		return Context{}, fmt.Errorf(messages.RenderResolveUserFailed, err)
	}
	return Context{User: u.Username, Dir: dir}, nil
}

// Renderer produces the two configuration artifacts and runs the helper
// script that fills remaining dynamic configuration.
type Renderer struct {
	Runner   execx.Runner
	Settings installconfig.Settings
	Log      *log.Logger
	// DryRun reports what would be written without producing artifacts.
	// Templates are still read and parsed so a dry run catches missing or
	// broken templates.
	DryRun bool
	// DryOut receives dry-run reports.
	DryOut io.Writer
}

// Run renders both artifacts and invokes the config helper. A missing
// template aborts before anything is written.
func (r *Renderer) Run(ctx context.Context, tc Context) error {
	pairs := []struct {
		template string
		out      string
	}{
		{r.Settings.ConfigTemplatePath(), r.Settings.ConfigFilePath()},
		{r.Settings.UnitTemplatePath(), r.Settings.UnitFilePath()},
	}
	for _, pair := range pairs {
		if err := r.renderFile(pair.template, pair.out, tc); err != nil {
			return err
		}
	}
	r.Log.Info("filling dynamic configuration", "helper", r.Settings.HelperScript)
	if err := r.Runner.Run(ctx, r.Settings.Dir, r.Settings.VenvPython(), r.Settings.HelperScript); err != nil {
		return fmt.Errorf(messages.RenderHelperFailedFmt, r.Settings.HelperScript, err)
	}
	return nil
}

// renderFile substitutes tc into the template at templatePath and writes the
// result to outPath, overwriting any previous artifact.
func (r *Renderer) renderFile(templatePath, outPath string, tc Context) error {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf(messages.RenderMissingTemplateFmt, templatePath, err)
	}
	tmpl, err := template.New(templatePath).Parse(string(data))
	if err != nil {
		return fmt.Errorf(messages.RenderParseFailedFmt, templatePath, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, tc); err != nil {
		return fmt.Errorf(messages.RenderExecFailedFmt, templatePath, err)
	}
	if r.DryRun {
		if r.DryOut != nil {
			_, _ = fmt.Fprintf(r.DryOut, messages.RenderDryRunFmt, templatePath, outPath)
		}
		return nil
	}
	r.Log.Info("rendering", "template", templatePath, "out", outPath)
	if err := fsutil.WriteFileAtomic(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf(messages.RenderWriteFailedFmt, outPath, err)
	}
	return nil
}
