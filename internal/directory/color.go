package directory

import "fmt"

// PresenceColor derives a stable display color from a display name. The
// hue is the sum of the name's character codes mod 360, with fixed
// saturation and lightness, so the same user renders the same color on
// every call and on every instance of the service.
func PresenceColor(displayName string) string {
	sum := 0
	for _, r := range displayName {
		sum += int(r)
	}
	hue := sum % 360
	if hue < 0 {
		hue += 360
	}
	return fmt.Sprintf("hsl(%d, 80%%, 60%%)", hue)
}
