package render

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Renderer produces an HTML snapshot of a listing page after navigation
// settles. Implementations own their browser state; callers only see the
// resulting markup.
type Renderer interface {
	Render(ctx context.Context, url, readySelector string) (string, error)
}

// ChromeRenderer renders pages with headless Chrome. Exec allocators are
// pooled so concurrent sources don't pay browser startup per scrape, and
// each Render gets its own browser context.
type ChromeRenderer struct {
	timeout     time.Duration
	settleDelay time.Duration
	logger      *zap.Logger
	ctxPool     sync.Pool
}

func NewChromeRenderer(timeout, settleDelay time.Duration, logger *zap.Logger) *ChromeRenderer {
	r := &ChromeRenderer{
		timeout:     timeout,
		settleDelay: settleDelay,
		logger:      logger,
	}
	r.ctxPool.New = func() interface{} {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", ""),
			chromedp.Flag("disable-dev-shm-usage", ""),
			chromedp.UserAgent(randomUserAgent()),
		)
		allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
		return allocCtx
	}
	return r
}

// Render navigates to url, waits for readySelector as a hint of a
// populated page, sleeps the settle delay and snapshots the DOM. A
// readiness timeout is not fatal: whatever rendered is still extracted
// best-effort.
func (r *ChromeRenderer) Render(ctx context.Context, url, readySelector string) (string, error) {
	allocCtx := r.ctxPool.Get().(context.Context)
	defer r.ctxPool.Put(allocCtx)

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()
	taskCtx, cancel := context.WithTimeout(taskCtx, r.timeout)
	defer cancel()

	if err := chromedp.Run(taskCtx, chromedp.Navigate(url)); err != nil {
		return "", err
	}

	if readySelector != "" {
		waitCtx, waitCancel := context.WithTimeout(taskCtx, r.timeout/2)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(readySelector, chromedp.ByQuery))
		waitCancel()
		if err != nil {
			r.logger.Warn("readiness selector did not appear, extracting anyway",
				zap.String("url", url), zap.String("selector", readySelector))
		}
	}

	var htmlContent string
	err := chromedp.Run(taskCtx,
		chromedp.Sleep(r.settleDelay),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", err
	}
	return htmlContent, nil
}
