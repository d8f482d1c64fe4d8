package xmlrpc

import "strings"

// EscapeText escapes the characters that are not safe inside XML character
// data or attribute values: & < > ' and ". The emitter does not call this
// itself — <string>/<name> content is written as-is, matching the dedicated
// server's own wire behavior — so callers that embed markup in a method
// name or string argument must escape it before handing the value to
// EncodeCall/EncodeResponse.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, "&<>'\"") {
		return s
	}
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
