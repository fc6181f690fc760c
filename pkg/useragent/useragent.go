// Package useragent classifies HTTP User-Agent strings for access-method and
// device detection.
package useragent

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Device types reported by Parse.
const (
	DeviceTypeMobile  = "mobile"
	DeviceTypeTablet  = "tablet"
	DeviceTypeDesktop = "desktop"
	DeviceTypeBot     = "bot"
	DeviceTypeUnknown = "unknown"
)

// LineAppMarker is the token the LINE in-app browser embeds in its user agent
// (e.g. "... Line/13.1.0 ...").
const LineAppMarker = "Line/"

// UserAgent contains the parsed information from a user agent string.
type UserAgent struct {
	raw        string
	deviceType string
	lineInApp  bool
}

// String returns the raw user agent string.
func (ua UserAgent) String() string { return ua.raw }

// DeviceType returns the device classification (mobile, tablet, desktop, bot, unknown).
func (ua UserAgent) DeviceType() string { return ua.deviceType }

// IsMobile reports whether the user agent belongs to a mobile device.
func (ua UserAgent) IsMobile() bool { return ua.deviceType == DeviceTypeMobile }

// IsBot reports whether the user agent belongs to a crawler or monitoring tool.
func (ua UserAgent) IsBot() bool { return ua.deviceType == DeviceTypeBot }

// IsLineInApp reports whether the request came from the LINE in-app browser.
func (ua UserAgent) IsLineInApp() bool { return ua.lineInApp }

// keywordSet groups lookup keywords for device classification.
type keywordSet []string

func (k keywordSet) matches(lowerUA string) bool {
	for _, keyword := range k {
		if strings.Contains(lowerUA, keyword) {
			return true
		}
	}
	return false
}

var (
	botKeywords     = keywordSet{"bot", "spider", "crawler", "slurp", "monitor", "validator", "fetcher", "scraper", "lighthouse"}
	tabletKeywords  = keywordSet{"tablet", "kindle", "silk"}
	mobileKeywords  = keywordSet{"mobile", "iphone", "ipod", "android", "webos", "windows phone", "iemobile", "blackberry", "opera mini"}
	desktopKeywords = keywordSet{"windows", "macintosh", "mac os x", "x11", "linux", "chromeos", "cros"}
)

var titleCaser = cases.Title(language.English)

// Parse classifies a user agent string. An empty string yields an unknown
// device that is neither mobile nor LINE in-app.
func Parse(raw string) UserAgent {
	ua := UserAgent{
		raw:        raw,
		deviceType: DeviceTypeUnknown,
		lineInApp:  strings.Contains(raw, LineAppMarker),
	}
	if raw == "" {
		return ua
	}

	lower := strings.ToLower(raw)
	ua.deviceType = classify(lower)
	return ua
}

// classify orders checks by disambiguation need: unambiguous iOS identifiers
// first, then bots, then Android (tablets omit the "mobile" token), then
// keyword fallbacks.
func classify(lowerUA string) string {
	if strings.Contains(lowerUA, "ipad") {
		return DeviceTypeTablet
	}
	if strings.Contains(lowerUA, "iphone") || strings.Contains(lowerUA, "ipod") {
		return DeviceTypeMobile
	}
	if botKeywords.matches(lowerUA) {
		return DeviceTypeBot
	}
	if strings.Contains(lowerUA, "android") {
		if strings.Contains(lowerUA, "mobile") {
			return DeviceTypeMobile
		}
		return DeviceTypeTablet
	}
	if tabletKeywords.matches(lowerUA) {
		return DeviceTypeTablet
	}
	if mobileKeywords.matches(lowerUA) {
		return DeviceTypeMobile
	}
	if desktopKeywords.matches(lowerUA) {
		return DeviceTypeDesktop
	}
	return DeviceTypeUnknown
}

// FormatDeviceType renders a device type for display ("Mobile", "Desktop", ...).
func FormatDeviceType(deviceType string) string {
	if deviceType == "" || deviceType == DeviceTypeUnknown {
		return "Unknown"
	}
	return titleCaser.String(deviceType)
}
