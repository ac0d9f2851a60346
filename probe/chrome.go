package probe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"vehicle-storefront/services"
	"vehicle-storefront/utils"
)

const measureJS = `({
	scrollY: window.scrollY,
	innerHeight: window.innerHeight,
	documentHeight: document.documentElement.scrollHeight
})`

const scrollJS = `window.scrollTo(0, document.documentElement.scrollHeight)`

// Sample is the viewport after one scroll step and whether it is close
// enough to the bottom to request the next page.
type Sample struct {
	Step     int
	Viewport services.Viewport
	Near     bool
}

// ChromeViewport measures the scroll geometry of a rendered storefront page
// in headless Chrome, to check the infinite-scroll threshold against real
// layouts.
type ChromeViewport struct {
	url       string
	chromeBin string
	logger    *utils.Logger
	settle    time.Duration
}

// New creates a probe for pageURL. chromeBin may be empty to search PATH.
func New(pageURL, chromeBin string, logger *utils.Logger) *ChromeViewport {
	return &ChromeViewport{url: pageURL, chromeBin: chromeBin, logger: logger, settle: 1500 * time.Millisecond}
}

// Sample loads the page and scrolls to the bottom steps times, measuring
// the viewport after each scroll. The first sample is taken before
// scrolling.
func (p *ChromeViewport) Sample(ctx context.Context, steps int, trigger *services.ScrollTrigger) ([]Sample, error) {
	bin := findChromeBinary(p.chromeBin)
	p.logger.Info("[probe] Using browser binary: %q", bin)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(bin)...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	runCtx, cancelTimeout := context.WithTimeout(browserCtx, 90*time.Second)
	defer cancelTimeout()

	var vp services.Viewport
	if err := chromedp.Run(runCtx,
		chromedp.Navigate(p.url),
		chromedp.Sleep(p.settle),
		chromedp.Evaluate(measureJS, &vp),
	); err != nil {
		return nil, fmt.Errorf("probe: load %s: %w", p.url, err)
	}

	samples := []Sample{{Step: 0, Viewport: vp, Near: trigger.Near(vp)}}
	for step := 1; step <= steps; step++ {
		if err := chromedp.Run(runCtx,
			chromedp.Evaluate(scrollJS, nil),
			chromedp.Sleep(p.settle),
			chromedp.Evaluate(measureJS, &vp),
		); err != nil {
			return samples, fmt.Errorf("probe: scroll step %d: %w", step, err)
		}
		s := Sample{Step: step, Viewport: vp, Near: trigger.Near(vp)}
		p.logger.Debug("[probe] Step %d: %.0fpx from bottom (near=%t)", step, vp.DistanceFromBottom(), s.Near)
		samples = append(samples, s)
	}
	return samples, nil
}

func allocatorOptions(bin string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 800),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	return opts
}

// findChromeBinary locates a Chrome/Chromium binary. An explicit path wins.
func findChromeBinary(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
