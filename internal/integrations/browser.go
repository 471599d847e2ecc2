package integrations

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"mcp-server/internal/actions"
)

// defaultMaxChars bounds extracted page text
const defaultMaxChars = 4000

type browserPageParams struct {
	URL    string `mapstructure:"url" validate:"required"`
	WaitMS int    `mapstructure:"wait_ms"`
}

type browserTextParams struct {
	URL      string `mapstructure:"url" validate:"required"`
	WaitMS   int    `mapstructure:"wait_ms"`
	MaxChars int    `mapstructure:"max_chars"`
}

type browserScreenshotParams struct {
	URL      string `mapstructure:"url" validate:"required"`
	WaitMS   int    `mapstructure:"wait_ms"`
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
	FullPage bool   `mapstructure:"full_page"`
}

// withPage launches a headless browser, navigates to the URL and hands
// the loaded page to fn. The browser is torn down on every exit path.
func (s *Service) withPage(ctx context.Context, rawURL string, waitMS int, fn func(page *rod.Page) error) error {
	if err := validateHTTPURL(rawURL); err != nil {
		return err
	}

	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: rawURL})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	if waitMS > 0 {
		select {
		case <-time.After(time.Duration(waitMS) * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fn(page)
}

// browserGetTitle loads a page and returns its title
func (s *Service) browserGetTitle(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p browserPageParams
	if err := actions.DecodeParams(params, &p); err != nil {
		return nil, err
	}

	var title string
	err := s.withPage(ctx, p.URL, p.WaitMS, func(page *rod.Page) error {
		info, err := page.Info()
		if err != nil {
			return fmt.Errorf("failed to read page info: %w", err)
		}
		title = info.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"url":   p.URL,
		"title": title,
	}, nil
}

// browserGetText loads a page and returns its visible text, truncated
// to max_chars.
func (s *Service) browserGetText(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p browserTextParams
	if err := actions.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.MaxChars <= 0 {
		p.MaxChars = defaultMaxChars
	}

	var text string
	err := s.withPage(ctx, p.URL, p.WaitMS, func(page *rod.Page) error {
		body, err := page.Element("body")
		if err != nil {
			return fmt.Errorf("failed to find page body: %w", err)
		}
		text, err = body.Text()
		if err != nil {
			return fmt.Errorf("failed to extract page text: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	truncated := false
	if runes := []rune(text); len(runes) > p.MaxChars {
		text = string(runes[:p.MaxChars])
		truncated = true
	}

	return map[string]interface{}{
		"url":       p.URL,
		"text":      text,
		"truncated": truncated,
	}, nil
}

// browserScreenshot loads a page and captures a PNG screenshot,
// returned base64-encoded.
func (s *Service) browserScreenshot(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p browserScreenshotParams
	if err := actions.DecodeParams(params, &p); err != nil {
		return nil, err
	}

	var shot []byte
	err := s.withPage(ctx, p.URL, p.WaitMS, func(page *rod.Page) error {
		if p.Width > 0 && p.Height > 0 {
			if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
				Width:  p.Width,
				Height: p.Height,
			}); err != nil {
				return fmt.Errorf("failed to set viewport: %w", err)
			}
		}

		var err error
		shot, err = page.Screenshot(p.FullPage, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			return fmt.Errorf("failed to capture screenshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"url":        p.URL,
		"format":     "png",
		"full_page":  p.FullPage,
		"screenshot": base64.StdEncoding.EncodeToString(shot),
	}, nil
}
