package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/scout-cli/internal/config"
)

// LaunchFlag is one Chrome command line switch. Value is either a bool for
// presence switches or a string.
type LaunchFlag struct {
	Name  string
	Value any
}

// LaunchFlags returns the switches every engine launches Chrome with.
// Entries from cfg.Args may be written as "--name", "name" or "name=value".
func LaunchFlags(cfg config.BrowserConfig) []LaunchFlag {
	flags := []LaunchFlag{
		{Name: "no-sandbox", Value: true},
		{Name: "disable-gpu", Value: true},
		{Name: "no-first-run", Value: true},
		{Name: "no-default-browser-check", Value: true},
		{Name: "disable-dev-shm-usage", Value: true},
	}
	if cfg.Headless {
		flags = append(flags, LaunchFlag{Name: "headless", Value: true})
	}
	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		flags = append(flags, LaunchFlag{Name: "window-size", Value: windowSize(cfg)})
	}

	for _, arg := range cfg.Args {
		key, value, found := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if key == "" {
			continue
		}
		if found {
			flags = append(flags, LaunchFlag{Name: key, Value: value})
		} else {
			flags = append(flags, LaunchFlag{Name: key, Value: true})
		}
	}
	return flags
}

// AllocatorOptions maps the launch flags onto chromedp exec allocator options.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	flags := LaunchFlags(cfg)
	opts := make([]chromedp.ExecAllocatorOption, 0, len(flags)+1)
	for _, f := range flags {
		opts = append(opts, chromedp.Flag(f.Name, f.Value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

func windowSize(cfg config.BrowserConfig) string {
	return fmt.Sprintf("%d,%d", cfg.ViewportWidth, cfg.ViewportHeight)
}
