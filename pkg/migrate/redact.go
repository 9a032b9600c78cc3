package migrate

import "net/url"

// Redact masks the password in a connection string for display.
//
// The destination URI is a secret; every log line and output record
// that mentions it must go through Redact first. If the string does not
// parse as a URL it is replaced wholesale rather than risk leaking.
func Redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "(redacted)"
	}
	if u.User == nil {
		return uri
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "REDACTED")
	}
	return u.String()
}
