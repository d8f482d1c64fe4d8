package xmlrpc

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const base64LineLength = 76

// decodeBase64 decodes a <base64> element's text content. The dedicated
// server wraps its base64 output at 76 characters (per MIME) using CRLF,
// so whitespace is stripped before decoding rather than rejected.
func decodeBase64(text string) ([]byte, error) {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		switch r {
		case ' ', '\n', '\t', '\r', '\v', '\f':
			continue
		}
		sb.WriteRune(r)
	}

	b, err := base64.StdEncoding.DecodeString(sb.String())
	if err != nil {
		return nil, fmt.Errorf("invalid base64 value: %w", err)
	}
	return b, nil
}

// encodeBase64 encodes bytes to base64, wrapping lines at 76 characters with
// CRLF to mimic the dedicated server's own <base64> encoding.
func encodeBase64(b []byte) string {
	raw := base64.StdEncoding.EncodeToString(b)

	extra := len(raw) / base64LineLength * 2
	var sb strings.Builder
	sb.Grow(len(raw) + extra)

	for i, r := range raw {
		if i > 0 && i%base64LineLength == 0 {
			sb.WriteString("\r\n")
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
