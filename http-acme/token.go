package http_acme

// MaxTokenLength is the longest token accepted by ValidToken
const MaxTokenLength = 256

// ValidToken reports whether token is a plausible HTTP-01 token. Tokens are
// base64url encoded so only ASCII letters, digits, '-' and '_' are allowed.
// This also guarantees the token is a single safe path element.
func ValidToken(token string) bool {
	if len(token) == 0 || len(token) > MaxTokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		switch c := token[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
