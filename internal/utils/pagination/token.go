package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const separator = "|"

// EncodeToken joins fields into an opaque continuation token.
func EncodeToken(fields ...string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(fields, separator)))
}

// DecodeToken splits a token produced by EncodeToken. It fails unless the token
// carries exactly want fields.
func DecodeToken(token string, want int) ([]string, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.Split(string(decodedBytes), separator)
	if len(parts) != want {
		return nil, fmt.Errorf("invalid pagination token format: %d fields, want %d", len(parts), want)
	}
	return parts, nil
}

// EntryToken identifies a ledger line by transaction number and line number.
func EntryToken(transactionNumber string, lineNo int) string {
	return EncodeToken(transactionNumber, strconv.Itoa(lineNo))
}

// DecodeEntryToken reverses EntryToken.
func DecodeEntryToken(token string) (string, int, error) {
	parts, err := DecodeToken(token, 2)
	if err != nil {
		return "", 0, err
	}
	lineNo, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid pagination token format (line number): %w", err)
	}
	return parts[0], lineNo, nil
}

// Page returns at most limit items following the one whose key equals
// afterToken, plus the token for the following page (nil on the last page).
// A limit of zero or less returns everything after the token.
func Page[T any](items []T, limit int, afterToken string, key func(T) string) ([]T, *string, error) {
	start := 0
	if afterToken != "" {
		start = -1
		for i, item := range items {
			if key(item) == afterToken {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, nil, fmt.Errorf("pagination token does not match any item")
		}
	}
	rest := items[start:]
	if limit <= 0 || len(rest) <= limit {
		return rest, nil, nil
	}
	page := rest[:limit]
	next := key(page[len(page)-1])
	return page, &next, nil
}
