// Package features turns repeated -f flag values into an immutable feature
// selection that is threaded through provisioning as a plain parameter.
package features

import (
	"fmt"
	"io"

	"github.com/olialb/mqtt-display-installer/internal/messages"
)

// Flag values recognized by Parse. FlagBacklight is kept as a deprecated alias
// of FlagBH1750: the historical installer used "backlight" to toggle the light
// sensor while actual backlight control was always on and needed no install.
const (
	FlagPyAutoGUI  = "pyautogui"
	FlagBH1750     = "bh1750"
	FlagBacklight  = "backlight"
	FlagHADiscover = "haDiscover"
)

// Selection records which optional features the installer provisions.
// Backlight is display backlight control, enabled by default; it is not
// selectable via flags because it requires no extra packages.
type Selection struct {
	PyAutoGUI   bool
	BH1750      bool
	Backlight   bool
	HADiscovery bool
}

// Default returns the selection used when no flags are passed.
func Default() Selection {
	return Selection{Backlight: true}
}

// Parse folds flag values into a Selection, writing an informational notice
// per recognized value. Unknown values are ignored without error, and
// repeating a value has the same effect as passing it once.
func Parse(values []string, notices io.Writer) Selection {
	sel := Default()
	for _, value := range values {
		switch value {
		case FlagPyAutoGUI:
			if !sel.PyAutoGUI {
				_, _ = fmt.Fprintln(notices, messages.FeaturePyAutoGUINotice)
			}
			sel.PyAutoGUI = true
		case FlagBH1750:
			if !sel.BH1750 {
				_, _ = fmt.Fprintln(notices, messages.FeatureBH1750Notice)
			}
			sel.BH1750 = true
		case FlagBacklight:
			if !sel.BH1750 {
				_, _ = fmt.Fprintln(notices, messages.FeatureBacklightAliasNotice)
			}
			sel.BH1750 = true
		case FlagHADiscover:
			if !sel.HADiscovery {
				_, _ = fmt.Fprintln(notices, messages.FeatureHADiscoverNotice)
			}
			sel.HADiscovery = true
		}
	}
	return sel
}
