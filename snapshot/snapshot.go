// Package snapshot drives a headless browser against a running viewer and
// saves PNG screenshots of the chart area at chosen age bounds.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"purchase-explorer/config"
	"purchase-explorer/utils"
)

const chartSelector = "#d3-viz"

// Shot is one saved screenshot.
type Shot struct {
	Bound int
	Path  string
}

// Capturer takes screenshots of the viewer page.
type Capturer struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
	settle time.Duration
}

// New returns a Capturer using cfg's browser and retry settings.
func New(cfg *config.Config, logger *utils.Logger) *Capturer {
	return &Capturer{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
		settle: 500 * time.Millisecond,
	}
}

// Capture opens pageURL, moves the slider to each bound in turn, and writes
// one PNG per bound into dir. A bound of 0 captures the page as loaded.
func (c *Capturer) Capture(ctx context.Context, pageURL, dir, region string, bounds []int) ([]Shot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create %s: %w", dir, err)
	}

	chromeBin := findChromeBinary(c.cfg.ChromeBin)
	c.logger.Info("[snapshot] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 1000),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	err := c.retry.Do(ctx, "open viewer", func() error {
		return chromedp.Run(browserCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitVisible(chartSelector, chromedp.ByQuery),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", pageURL, err)
	}

	shots := make([]Shot, 0, len(bounds))
	for _, bound := range bounds {
		var buf []byte
		actions := []chromedp.Action{}
		if bound > 0 {
			actions = append(actions,
				chromedp.Evaluate(sliderScript(bound), nil),
				chromedp.Sleep(c.settle),
			)
		}
		actions = append(actions, chromedp.Screenshot(chartSelector, &buf, chromedp.NodeVisible, chromedp.ByQuery))

		if err := chromedp.Run(browserCtx, actions...); err != nil {
			return shots, fmt.Errorf("snapshot: bound %d: %w", bound, err)
		}

		path := filepath.Join(dir, shotName(region, bound))
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			return shots, fmt.Errorf("snapshot: write %s: %w", path, err)
		}
		c.logger.Info("[snapshot] Saved %s", path)
		shots = append(shots, Shot{Bound: bound, Path: path})
	}
	return shots, nil
}

// sliderScript sets the age slider and fires the same input event a user
// drag would.
func sliderScript(bound int) string {
	return fmt.Sprintf(`(function () {
  var s = document.getElementById("age-slider");
  s.value = %d;
  s.dispatchEvent(new Event("input", { bubbles: true }));
  return s.value;
})()`, bound)
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

func shotName(region string, bound int) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(region), "-"), "-")
	if slug == "" {
		slug = "region"
	}
	if bound <= 0 {
		return slug + "-all.png"
	}
	return fmt.Sprintf("%s-age-%d.png", slug, bound)
}

// findChromeBinary locates a Chrome or Chromium binary. An explicit path wins.
func findChromeBinary(explicit string) string {
	if explicit != "" {
		return explicit
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
