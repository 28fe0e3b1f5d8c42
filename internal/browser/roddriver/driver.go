// Package roddriver implements the page driver on go-rod. It shares the
// in-page scripts and normalization with the chromedp driver.
package roddriver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/agent"
	"github.com/xkilldash9x/scout-cli/internal/browser"
	"github.com/xkilldash9x/scout-cli/internal/config"
)

// Driver controls a single rod page.
type Driver struct {
	browserCfg config.BrowserConfig
	netCfg     config.NetworkConfig
	logger     *zap.Logger

	browser   *rod.Browser
	page      *rod.Page
	conn      *cdp.WebSocket
	launcher  *launcher.Launcher // nil when attached to a remote browser
	closeOnce sync.Once
}

var (
	_ agent.PageDriver = (*Driver)(nil)
	_ agent.FormFiller = (*Driver)(nil)
)

// NewDriver connects to browser.debugger_url, or launches Chrome with the
// shared launch flags, and opens a blank page.
func NewDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Driver, error) {
	logger = logger.Named("browser.rod")

	var l *launcher.Launcher
	controlURL := cfg.Browser.DebuggerURL
	if controlURL == "" {
		l = newLauncher(cfg.Browser)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	// The websocket is ours so Close can drop it without closing a remote browser.
	conn := &cdp.WebSocket{}
	if err := conn.Connect(ctx, controlURL, nil); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	b := rod.New().Client(cdp.New().Start(conn)).Context(context.WithoutCancel(ctx))
	if err := b.Connect(); err != nil {
		_ = conn.Close()
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		if l != nil {
			_ = b.Close()
			l.Kill()
		}
		_ = conn.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	if cfg.Browser.ViewportWidth > 0 && cfg.Browser.ViewportHeight > 0 {
		_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		})
	}

	logger.Info("Browser connected.", zap.String("control_url", controlURL))
	return &Driver{
		browserCfg: cfg.Browser,
		netCfg:     cfg.Network,
		logger:     logger,
		browser:    b,
		page:       page,
		conn:       conn,
		launcher:   l,
	}, nil
}

// newLauncher applies the shared launch flags to a rod launcher.
func newLauncher(cfg config.BrowserConfig) *launcher.Launcher {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.ExecPath != "" {
		l = l.Bin(cfg.ExecPath)
	}
	for _, f := range browser.LaunchFlags(cfg) {
		if f.Name == "headless" {
			continue
		}
		switch v := f.Value.(type) {
		case string:
			l = l.Set(flags.Flag(f.Name), v)
		case bool:
			if v {
				l = l.Set(flags.Flag(f.Name))
			}
		}
	}
	return l
}

// pageFor binds the page to ctx with timeout for a single operation.
func (d *Driver) pageFor(ctx context.Context, timeout time.Duration) (*rod.Page, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	return d.page.Context(opCtx), cancel
}

func (d *Driver) Open(ctx context.Context, url string) error {
	p, cancel := d.pageFor(ctx, d.netCfg.NavigationTimeout)
	defer cancel()

	if err := p.Navigate(url); err != nil {
		return &agent.NavigationError{URL: url, Err: err}
	}
	if err := p.WaitLoad(); err != nil {
		return &agent.NavigationError{URL: url, Err: err}
	}
	d.logger.Debug("Page opened.", zap.String("url", url))
	return nil
}

func (d *Driver) PageState(ctx context.Context) agent.PageState {
	p, cancel := d.pageFor(ctx, d.netCfg.ActionTimeout)
	defer cancel()

	var raw browser.RawState
	err := d.eval(p, &raw, browser.ExtractStateScript, d.browserCfg.LinkLimit)
	if err == nil {
		return browser.Normalize(raw, d.browserCfg.LinkLimit)
	}
	d.logger.Warn("Page extraction failed, reporting partial state.", zap.Error(err))

	var partial browser.RawState
	if info, infoErr := d.page.Info(); infoErr == nil {
		partial.URL, partial.Title = info.URL, info.Title
	}
	return browser.Normalize(partial, d.browserCfg.LinkLimit)
}

func (d *Driver) ClickButton(ctx context.Context, text string) bool {
	return d.click(ctx, "button", text)
}

func (d *Driver) ClickLink(ctx context.Context, text string) bool {
	return d.click(ctx, "link", text)
}

func (d *Driver) click(ctx context.Context, role, text string) bool {
	p, cancel := d.pageFor(ctx, d.netCfg.ActionTimeout)
	defer cancel()

	var clicked bool
	if err := d.eval(p, &clicked, browser.ClickByTextScript, role, text); err != nil {
		d.logger.Warn("Click failed.", zap.String("role", role), zap.String("text", text), zap.Error(err))
		return false
	}
	if !clicked {
		d.logger.Debug("No visible element matched.", zap.String("role", role), zap.String("text", text),
			zap.String("error_code", string(agent.ErrCodeElementNotFound)))
		return false
	}
	d.settle(ctx)
	return true
}

func (d *Driver) FillForm(ctx context.Context, values map[string]string) bool {
	p, cancel := d.pageFor(ctx, d.netCfg.ActionTimeout)
	defer cancel()

	var res browser.FillResult
	if err := d.eval(p, &res, browser.FillFormScript, values); err != nil {
		d.logger.Warn("Form fill failed.", zap.Error(err))
		return false
	}
	d.logger.Debug("Form filled.", zap.Int("filled", res.Filled), zap.Bool("submitted", res.Submitted))
	if res.Filled == 0 || !res.Submitted {
		return false
	}
	d.settle(ctx)
	return true
}

func (d *Driver) settle(ctx context.Context) {
	if d.netCfg.PostActionWait <= 0 {
		return
	}
	t := time.NewTimer(d.netCfg.PostActionWait)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (d *Driver) eval(p *rod.Page, res any, fn string, args ...any) error {
	obj, err := p.Eval(fn, args...)
	if err != nil {
		return err
	}
	return obj.Value.Unmarshal(res)
}

// Close closes the page. A launched browser is closed and its process killed;
// for a remote browser only the CDP connection is dropped.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		_ = d.page.Close()
		if d.launcher == nil {
			// Attached: leave the remote browser running, end our session only.
			err = d.conn.Close()
			d.logger.Info("Disconnected from remote browser.")
			return
		}
		err = d.browser.Close()
		d.launcher.Kill()
		d.launcher.Cleanup()
		_ = d.conn.Close()
		d.logger.Info("Browser closed.")
	})
	return err
}
