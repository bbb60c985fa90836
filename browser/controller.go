// Package browser drives a Chrome session for agent tool calls.
//
// One Controller is one browser session: started once per run, shared by all
// browser tools, closed when the run ends. Navigation retries transient
// failures internally so tool dispatch never has to.
//
// Information Hiding:
// - chromedp allocator and context lifecycle hidden behind Start/Stop
// - Stealth configuration encapsulated
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrNotStarted is returned when an operation runs before Start.
var ErrNotStarted = errors.New("browser session not started")

const (
	defaultNavRetries   = 3
	defaultRetryDelay   = 2 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultScrollPixels = 500
)

// stealthJS masks the most common automation signals before any page script
// runs.
const stealthJS = `
Object.defineProperty(navigator, 'webdriver', { get: () => false });
window.chrome = window.chrome || { runtime: {} };
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications' ?
	Promise.resolve({ state: Notification.permission }) :
	originalQuery(parameters)
);
`

// Controller manages a single Chrome session.
type Controller struct {
	headless   bool
	profileDir string
	userAgent  string
	navRetries int
	retryDelay time.Duration

	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	browserCtx    context.Context
}

// NewController creates an unstarted controller with default settings
// (headed, three navigation attempts).
func NewController() *Controller {
	return &Controller{
		userAgent:  defaultUserAgent,
		navRetries: defaultNavRetries,
		retryDelay: defaultRetryDelay,
	}
}

// Headless toggles headless mode.
func (c *Controller) Headless(enabled bool) *Controller {
	c.headless = enabled
	return c
}

// WithProfileDir uses a persistent browser profile.
func (c *Controller) WithProfileDir(dir string) *Controller {
	c.profileDir = dir
	return c
}

// WithUserAgent overrides the default user agent.
func (c *Controller) WithUserAgent(ua string) *Controller {
	c.userAgent = ua
	return c
}

// Start launches Chrome and opens the session. Calling Start on a started
// controller is an error; the session lives until Stop.
func (c *Controller) Start(ctx context.Context) error {
	if c.browserCtx != nil {
		return errors.New("browser session already started")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("disable-site-isolation-trials", true),
		chromedp.UserAgent(c.userAgent),
		chromedp.WindowSize(1280, 800),
	)
	if c.profileDir != "" {
		opts = append(opts, chromedp.UserDataDir(c.profileDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Launch the browser and install the stealth script for every new page.
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthJS).Do(ctx)
		return err
	}))
	if err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	c.allocCancel = allocCancel
	c.browserCancel = browserCancel
	c.browserCtx = browserCtx
	return nil
}

// Stop closes the session and the browser process.
func (c *Controller) Stop() {
	if c.browserCancel != nil {
		c.browserCancel()
		c.browserCancel = nil
	}
	if c.allocCancel != nil {
		c.allocCancel()
		c.allocCancel = nil
	}
	c.browserCtx = nil
}

// Started reports whether the session is open.
func (c *Controller) Started() bool {
	return c.browserCtx != nil
}

// run executes chromedp actions on the session, honoring the caller context's
// deadline and cancellation.
func (c *Controller) run(ctx context.Context, actions ...chromedp.Action) error {
	if c.browserCtx == nil {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx := c.browserCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(runCtx, deadline)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(runCtx, actions...)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Navigate loads a URL, retrying transient failures with a fixed delay
// between attempts.
func (c *Controller) Navigate(ctx context.Context, url string) error {
	var lastErr error
	for attempt := 0; attempt < c.navRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body"))
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrNotStarted) || errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
	}
	return fmt.Errorf("failed to load %s after %d attempts: %w", url, c.navRetries, lastErr)
}

// Title returns the current page title.
func (c *Controller) Title(ctx context.Context) (string, error) {
	var title string
	if err := c.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// CurrentURL returns the current page location.
func (c *Controller) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := c.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// ExtractText returns the visible text of the first element matching the
// selector. An empty selector extracts the whole page body.
func (c *Controller) ExtractText(ctx context.Context, selector string) (string, error) {
	if selector == "" {
		selector = "body"
	}
	var text string
	if err := c.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Click clicks the first element matching the selector.
func (c *Controller) Click(ctx context.Context, selector string) error {
	return c.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// Fill clears the matched input and types the value. With submit set, a
// newline is sent afterwards.
func (c *Controller) Fill(ctx context.Context, selector, value string, submit bool) error {
	actions := []chromedp.Action{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	}
	if submit {
		actions = append(actions, chromedp.SendKeys(selector, "\r", chromedp.ByQuery))
	}
	return c.run(ctx, actions...)
}

// Scroll scrolls the page vertically by the given number of pixels.
// Zero scrolls by one default increment.
func (c *Controller) Scroll(ctx context.Context, pixels int) error {
	if pixels == 0 {
		pixels = defaultScrollPixels
	}
	script := fmt.Sprintf(`window.scrollBy({top: %d, behavior: 'smooth'});`, pixels)
	return c.run(ctx, chromedp.Evaluate(script, nil))
}

// WaitVisible blocks until the selector matches a visible element or the
// context deadline passes.
func (c *Controller) WaitVisible(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Screenshot captures the full page and writes it to path as PNG.
func (c *Controller) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := c.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// EvaluateJS runs a script on the page and returns its result rendered as a
// string.
func (c *Controller) EvaluateJS(ctx context.Context, script string) (string, error) {
	var result interface{}
	if err := c.run(ctx, chromedp.Evaluate(script, &result)); err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return fmt.Sprintf("%v", result), nil
}
