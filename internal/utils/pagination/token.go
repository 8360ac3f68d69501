package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// EncodeToken builds an opaque keyset cursor from the sort date and creation time
// of the last row on a page.
func EncodeToken(sortDate time.Time, createdAt time.Time) string {
	tokenStr := sortDate.Format(timeFormat) + "|" + createdAt.Format(timeFormat)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken reverses EncodeToken.
func DecodeToken(token string) (time.Time, time.Time, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token: %w", err)
	}
	sortPart, createdPart, ok := strings.Cut(string(decodedBytes), "|")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token: missing separator")
	}

	sortDate, err := time.Parse(timeFormat, sortPart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token: sort date: %w", err)
	}
	createdAt, err := time.Parse(timeFormat, createdPart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token: created_at: %w", err)
	}
	return sortDate, createdAt, nil
}
