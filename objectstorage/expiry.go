package objectstorage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// ExpireNever asks for the longest link lifetime the service supports.
	// It is sent as MaxExpiry; links still expire.
	ExpireNever = "never"

	// MaxExpiry is the longest bounded lifetime of a sharable link.
	MaxExpiry = "1y"

	// DefaultObjectExpiry is used by GetObject.
	DefaultObjectExpiry = "1h"
)

var expiryPattern = regexp.MustCompile(`^[1-9][0-9]*[smhdMy]$`)

// NormalizeExpiry validates a link lifetime in the <integer><unit> grammar
// (units s, m, h, d, M, y) and translates "never" to MaxExpiry.
func NormalizeExpiry(expire string) (string, error) {
	expire = strings.TrimSpace(expire)
	if expire == ExpireNever {
		return MaxExpiry, nil
	}
	if !expiryPattern.MatchString(expire) {
		return "", invalidArgument("duration", "%q is not <integer><s|m|h|d|M|y> or %q", expire, ExpireNever)
	}
	return expire, nil
}

// ParseExpiry converts a link lifetime to a duration. A month is 30 days and a
// year 365 days; "never" yields the one year cap.
func ParseExpiry(expire string) (time.Duration, error) {
	normalized, err := NormalizeExpiry(expire)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(normalized[:len(normalized)-1], 10, 64)
	if err != nil {
		return 0, invalidArgument("duration", "%q: %v", expire, err)
	}
	unit := map[byte]time.Duration{
		's': time.Second,
		'm': time.Minute,
		'h': time.Hour,
		'd': 24 * time.Hour,
		'M': 30 * 24 * time.Hour,
		'y': 365 * 24 * time.Hour,
	}[normalized[len(normalized)-1]]
	if n > int64(10*365*24*time.Hour/unit) {
		return 0, invalidArgument("duration", "%q is too long", expire)
	}
	return time.Duration(n) * unit, nil
}

// FormatExpiry renders d in the link lifetime grammar using the largest of
// d, h, m, s that divides it exactly.
func FormatExpiry(d time.Duration) (string, error) {
	if d < time.Second || d%time.Second != 0 {
		return "", invalidArgument("duration", "%s is not a positive whole number of seconds", d)
	}
	units := []struct {
		size   time.Duration
		suffix string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	}
	for _, u := range units {
		if d%u.size == 0 {
			return fmt.Sprintf("%d%s", d/u.size, u.suffix), nil
		}
	}
	return "", invalidArgument("duration", "cannot format %s", d)
}
