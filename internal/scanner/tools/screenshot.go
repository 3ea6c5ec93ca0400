package tools

import (
	"phishguard/internal/heuristics"
	"phishguard/pkg/models"
)

// Screenshot dimensions requested from the rendering service.
const (
	ScreenshotWidth  = 1200
	ScreenshotHeight = 800
)

// Screenshot builds the preview descriptor for target. No request is made;
// the rendering service is addressed purely by URL.
func Screenshot(baseURL, target string) models.Screenshot {
	u := baseURL + heuristics.EncodeURIComponent(target)
	return models.Screenshot{
		Available: true,
		URL:       &u,
		Width:     ScreenshotWidth,
		Height:    ScreenshotHeight,
	}
}
