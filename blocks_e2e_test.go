//go:build !ci

package blockkit_test

import (
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const e2ePage = `---
title: Blocks
---
# Blocks

| Carousel | |
|---|---|
| ![One](one.jpg) | First slide |
| ![Two](two.jpg) | Second slide |
| ![Three](three.jpg) | Third slide |

| Tabs | |
|---|---|
| Overview | The overview panel |
| Details | The details panel |
| Pricing | The pricing panel |
`

func TestCarouselInBrowser(t *testing.T) {
	b := newBrowser(t, 60*time.Second)
	url := b.url(startSite(t, map[string]string{"index.md": e2ePage}))

	err := chromedp.Run(b.ctx,
		chromedp.Navigate(url+"/"),
		chromedp.WaitVisible(`#carousel-1`, chromedp.ByID),
		chromedp.WaitReady(`#carousel-1-slide-0.carousel-slide-active`, chromedp.ByQuery),

		chromedp.Click(`#carousel-1 .carousel-btn-next`, chromedp.ByQuery),
		chromedp.WaitReady(`#carousel-1-slide-1.carousel-slide-active`, chromedp.ByQuery),

		chromedp.Click(`#carousel-1-indicator-2`, chromedp.ByID),
		chromedp.WaitReady(`#carousel-1-slide-2.carousel-slide-active`, chromedp.ByQuery),

		// Wraps around to the first slide.
		chromedp.Click(`#carousel-1 .carousel-btn-next`, chromedp.ByQuery),
		chromedp.WaitReady(`#carousel-1-slide-0.carousel-slide-active`, chromedp.ByQuery),
	)
	if err != nil {
		t.Fatalf("carousel interaction failed: %v", err)
	}
}

func TestTabsInBrowser(t *testing.T) {
	b := newBrowser(t, 60*time.Second)
	url := b.url(startSite(t, map[string]string{"index.md": e2ePage}))

	var selected string
	err := chromedp.Run(b.ctx,
		chromedp.Navigate(url+"/"),
		chromedp.WaitVisible(`#tabs-1-panel-0`, chromedp.ByID),
		chromedp.WaitNotVisible(`#tabs-1-panel-1`, chromedp.ByID),

		chromedp.Click(`#tabs-1-tab-1`, chromedp.ByID),
		chromedp.WaitVisible(`#tabs-1-panel-1`, chromedp.ByID),
		chromedp.WaitNotVisible(`#tabs-1-panel-0`, chromedp.ByID),

		// Arrow keys move selection and focus.
		chromedp.Focus(`#tabs-1-tab-1`, chromedp.ByID),
		chromedp.KeyEvent(kb.ArrowRight),
		chromedp.WaitVisible(`#tabs-1-panel-2`, chromedp.ByID),
		chromedp.AttributeValue(`#tabs-1-tab-2`, "aria-selected", &selected, nil, chromedp.ByID),
	)
	if err != nil {
		t.Fatalf("tabs interaction failed: %v", err)
	}
	if selected != "true" {
		t.Errorf("third tab aria-selected = %q, want true", selected)
	}
}
