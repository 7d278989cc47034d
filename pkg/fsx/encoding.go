package fsx

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// decodeString converts text data to bytes per the named encoding.
//
// Supported names: "utf-8"/"utf8" (default), "base64", "hex", and the
// byte encodings "ascii"/"latin1"/"binary" (each code point truncated to
// its low 8 bits). Unknown encoding names fall back to UTF-8 rather than
// failing, matching the permissive behavior callers rely on.
func decodeString(data, encoding string) ([]byte, error) {
	switch encoding {
	case "", "utf-8", "utf8":
		return []byte(data), nil
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
		return decoded, nil
	case "hex":
		decoded, err := hex.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("invalid hex data: %w", err)
		}
		return decoded, nil
	case "ascii", "latin1", "binary":
		runes := []rune(data)
		out := make([]byte, len(runes))
		for i, r := range runes {
			out[i] = byte(r)
		}
		return out, nil
	default:
		// Unknown encodings fall back to UTF-8.
		return []byte(data), nil
	}
}
