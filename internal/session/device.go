package session

import (
	"strings"

	"github.com/mssola/useragent"
)

// DeviceLabel extracts a human-readable device name from a User-Agent string,
// e.g. "Chrome on Linux" or "Safari on iPhone". Login audit events carry it
// so operators can spot sign-ins from unexpected devices.
func DeviceLabel(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
