package adapters

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrBlocked is returned when the page served an anti-bot interstitial
// instead of the hotel's content.
var ErrBlocked = eris.New("page blocked by anti-bot protection")

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// shellMaxChars bounds the size of a page that can be a bare JS shell.
const shellMaxChars = 2000

// DetectBlock checks fetched page text for signs of anti-bot protection.
func DetectBlock(text string) (bool, BlockType) {
	lower := strings.ToLower(text)

	// Cloudflare challenge page markers.
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return true, BlockCloudflare
	}

	// Captcha markers. Long pages mention "captcha" in forms and footers.
	if len(text) < shellMaxChars*2 &&
		(strings.Contains(lower, "captcha") || strings.Contains(lower, "are you a robot")) {
		return true, BlockCaptcha
	}

	// JS-only shell: a tiny page asking for javascript.
	if len(text) < shellMaxChars {
		if strings.Contains(lower, "enable javascript") || strings.Contains(lower, "requires javascript") {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
