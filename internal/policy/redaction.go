// Package policy scrubs identifiers and credentials before they reach logs.
package policy

import (
	"net/url"
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)

	// key=value DSNs: password=secret or password='se cret'
	dsnPasswordPattern = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)
)

const redactedPassword = "[REDACTED]"

// RedactPII masks emails, card numbers and phone numbers.
func RedactPII(input string) (redacted string, changed bool) {
	out := input
	// Cards before phones so long digit runs are not read as phone numbers.
	for _, r := range []struct {
		pattern *regexp.Regexp
		marker  string
	}{
		{emailPattern, "[REDACTED_EMAIL]"},
		{cardPattern, "[REDACTED_CARD]"},
		{phonePattern, "[REDACTED_PHONE]"},
	} {
		out = r.pattern.ReplaceAllString(out, r.marker)
	}
	return out, out != input
}

// RedactOwner is RedactPII for log fields where only the value matters.
func RedactOwner(owner string) string {
	out, _ := RedactPII(owner)
	return out
}

// RedactDSN hides the password in a database URL or key=value connection string.
func RedactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redactedPassword)
		}
		return u.String()
	}
	return dsnPasswordPattern.ReplaceAllString(dsn, "${1}"+redactedPassword)
}
