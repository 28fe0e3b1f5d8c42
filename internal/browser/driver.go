// internal/browser/driver.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/agent"
	"github.com/xkilldash9x/scout-cli/internal/config"
)

// Driver is a chromedp backed page driver controlling a single tab.
type Driver struct {
	browserCfg config.BrowserConfig
	netCfg     config.NetworkConfig
	logger     *zap.Logger

	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

var (
	_ agent.PageDriver = (*Driver)(nil)
	_ agent.FormFiller = (*Driver)(nil)
)

// NewDriver launches Chrome, or attaches to browser.debugger_url when set,
// and opens one tab. The browser lives until Close, independent of ctx
// cancellation after start-up.
func NewDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Driver, error) {
	logger = logger.Named("browser.chromedp")

	// Detach so a cancelled run context does not kill the browser before Close.
	base := context.WithoutCancel(ctx)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.Browser.DebuggerURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(base, cfg.Browser.DebuggerURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(base, AllocatorOptions(cfg.Browser)...)
	}

	sugar := logger.Sugar()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	startCtx, cancelStart := context.WithTimeout(tabCtx, cfg.Network.NavigationTimeout)
	defer cancelStart()
	if err := chromedp.Run(startCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info("Browser started.",
		zap.Bool("headless", cfg.Browser.Headless),
		zap.Bool("remote", cfg.Browser.DebuggerURL != ""))

	return &Driver{
		browserCfg:  cfg.Browser,
		netCfg:      cfg.Network,
		logger:      logger,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}, nil
}

// opContext derives a context from the tab that also ends when ctx does.
func (d *Driver) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(d.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (d *Driver) Open(ctx context.Context, url string) error {
	opCtx, cancel := d.opContext(ctx, d.netCfg.NavigationTimeout)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &agent.NavigationError{URL: url, Err: err}
	}
	d.logger.Debug("Page opened.", zap.String("url", url))
	return nil
}

// PageState runs the extraction script. When it fails only URL and title are
// reported.
func (d *Driver) PageState(ctx context.Context) agent.PageState {
	opCtx, cancel := d.opContext(ctx, d.netCfg.ActionTimeout)
	defer cancel()

	var raw RawState
	err := d.eval(opCtx, &raw, ExtractStateScript, d.browserCfg.LinkLimit)
	if err == nil {
		return Normalize(raw, d.browserCfg.LinkLimit)
	}
	d.logger.Warn("Page extraction failed, reporting partial state.", zap.Error(err))

	fallbackCtx, cancelFallback := d.opContext(ctx, d.netCfg.ActionTimeout)
	defer cancelFallback()
	var partial RawState
	if err := chromedp.Run(fallbackCtx, chromedp.Location(&partial.URL), chromedp.Title(&partial.Title)); err != nil {
		d.logger.Debug("Could not read location or title.", zap.Error(err))
	}
	return Normalize(partial, d.browserCfg.LinkLimit)
}

func (d *Driver) ClickButton(ctx context.Context, text string) bool {
	return d.click(ctx, "button", text)
}

func (d *Driver) ClickLink(ctx context.Context, text string) bool {
	return d.click(ctx, "link", text)
}

func (d *Driver) click(ctx context.Context, role, text string) bool {
	opCtx, cancel := d.opContext(ctx, d.netCfg.ActionTimeout)
	defer cancel()

	var clicked bool
	if err := d.eval(opCtx, &clicked, ClickByTextScript, role, text); err != nil {
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

// FillForm fills and submits the form. It reports success only when at least
// one field was filled and the form was submitted.
func (d *Driver) FillForm(ctx context.Context, values map[string]string) bool {
	opCtx, cancel := d.opContext(ctx, d.netCfg.ActionTimeout)
	defer cancel()

	var res FillResult
	if err := d.eval(opCtx, &res, FillFormScript, values); err != nil {
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

// settle waits out the post action delay on the tab.
func (d *Driver) settle(ctx context.Context) {
	if d.netCfg.PostActionWait <= 0 {
		return
	}
	opCtx, cancel := d.opContext(ctx, d.netCfg.PostActionWait+time.Second)
	defer cancel()
	_ = chromedp.Run(opCtx, chromedp.Sleep(d.netCfg.PostActionWait))
}

func (d *Driver) eval(ctx context.Context, res any, fn string, args ...any) error {
	expr, err := Call(fn, args...)
	if err != nil {
		return err
	}
	return chromedp.Run(ctx, chromedp.Evaluate(expr, res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

// Close shuts the tab and the browser. Safe to call more than once.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = chromedp.Cancel(d.tabCtx)
		d.tabCancel()
		d.allocCancel()
		d.logger.Info("Browser closed.")
	})
	return err
}
