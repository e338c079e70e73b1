package domain

import "strings"

// DeviceName classifies a User-Agent string into a short human label such as
// "Windows PC (Chrome)".
func DeviceName(userAgent string) string {
	ua := strings.ToLower(userAgent)

	name := "Unknown Device"
	switch {
	case strings.Contains(ua, "windows"):
		name = "Windows PC"
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os x") && !isIOS(ua):
		name = "MacBook/iMac"
	case strings.Contains(ua, "android"):
		name = "Android Device"
	case strings.Contains(ua, "linux"):
		name = "Linux PC"
	case isIOS(ua):
		name = "iOS Device"
	}

	// Edge and Chrome both advertise "chrome"; Safari is advertised by all three.
	switch {
	case strings.Contains(ua, "edg"):
		name += " (Edge)"
	case strings.Contains(ua, "chrome"):
		name += " (Chrome)"
	case strings.Contains(ua, "firefox"):
		name += " (Firefox)"
	case strings.Contains(ua, "safari"):
		name += " (Safari)"
	}
	return name
}

func isIOS(ua string) bool {
	return strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod")
}
