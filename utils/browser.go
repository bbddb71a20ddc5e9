package utils

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cart-extractor/internal/types"

	"github.com/chromedp/chromedp"
)

// BrowserClient renders cart pages in a headless browser
type BrowserClient struct {
	config *types.Config
	logger types.Logger
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// GetPageContent navigates to url, waits for the ready selector and
// returns the rendered HTML
func (b *BrowserClient) GetPageContent(ctx context.Context, url string) (string, error) {
	// chromedp chatter goes to debug level instead of the standard logger
	browserCtx, cancel := chromedp.NewContext(ctx,
		chromedp.WithLogf(b.logger.Debugf),
		chromedp.WithErrorf(b.logger.Debugf),
	)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.config.Timeout)
	defer cancel()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := b.waitReady(browserCtx); err != nil {
		return "", err
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}

	b.logger.Debugf("Successfully retrieved page content from %s (%d bytes)", url, len(html))
	return html, nil
}

// waitReady polls for the ready selector a bounded number of times. Running
// out of attempts is not an error: an empty cart may never render it.
func (b *BrowserClient) waitReady(ctx context.Context) error {
	selector := b.config.ReadySelector
	if selector == "" || b.config.PollAttempts <= 0 {
		return nil
	}

	script := "document.querySelector(" + strconv.Quote(selector) + ") !== null"
	for attempt := 1; attempt <= b.config.PollAttempts; attempt++ {
		var ready bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &ready)); err != nil {
			return fmt.Errorf("failed to check %s: %w", selector, err)
		}
		if ready {
			b.logger.Debugf("Page ready after %d attempt(s), found %s", attempt, selector)
			return nil
		}

		select {
		case <-time.After(b.config.PollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	b.logger.Warnf("%s not found after %d attempts, capturing page anyway", selector, b.config.PollAttempts)
	return nil
}
