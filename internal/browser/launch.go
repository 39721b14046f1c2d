package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/ShelfGoat/internal/config"
)

// Launch starts a Chromium instance and opens the single page a run drives.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *slog.Logger) (*RodSession, error) {
	logger = logger.With("component", "browser")

	l := newLauncher(cfg).Context(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := openPage(b, cfg)
	if err != nil {
		_ = b.Close()
		return nil, err
	}

	if cfg.UserAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent})
		if err != nil {
			logger.Warn("failed to set user agent", "error", err)
		}
	}

	sess := &RodSession{
		browser:  b,
		page:     page,
		keepOpen: cfg.KeepOpen,
		logger:   logger,
	}
	// A configured profile dir outlives the run; only temporary ones are removed.
	if cfg.UserDataDir == "" {
		sess.launcher = l
	}

	logger.Info("browser ready",
		"headless", cfg.Headless,
		"stealth", cfg.Stealth,
		"keep_open", cfg.KeepOpen,
	)
	return sess, nil
}

// newLauncher builds the Chromium launcher with the configured flags.
func newLauncher(cfg config.BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		Leakless(!cfg.KeepOpen).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}
	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}
	if cfg.WindowSize != "" {
		l = l.Set("window-size", cfg.WindowSize)
	}
	return l
}

// openPage creates the working page, patched for stealth when configured.
func openPage(b *rod.Browser, cfg config.BrowserConfig) (*rod.Page, error) {
	if !cfg.Stealth {
		page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
		return page, nil
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("stealth page: %w", err)
	}
	if err := DefaultStealthConfig().Apply(page); err != nil {
		return nil, fmt.Errorf("apply stealth: %w", err)
	}
	return page, nil
}

// LaunchHint returns a remediation hint when err shows the browser executable
// could not be found, or "" otherwise.
func LaunchHint(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "executable file not found"),
		strings.Contains(msg, "no such file or directory") && strings.Contains(msg, "launch browser"),
		strings.Contains(msg, "failed to download"):
		return "Chromium could not be started: install Chrome/Chromium and put it on PATH, or set browser.bin (SHELFGOAT_BROWSER_BIN) to its path"
	}
	return ""
}
