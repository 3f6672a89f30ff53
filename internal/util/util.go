package util

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

func GetIDFromString(str *string) string {
	hasher := sha1.New()
	hasher.Write([]byte(*str))

	return hex.EncodeToString(hasher.Sum(nil))
}

// TrimSlash strips at most one trailing slash.
func TrimSlash(s string) string {
	return strings.TrimSuffix(s, "/")
}

// FormatSize renders a byte count as kilobytes with two decimals.
// Halves round up, so 128 bytes is 0.13 KB.
func FormatSize(size int64) string {
	if size < 0 {
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	}

	h := (size*100 + 512) / 1024

	return fmt.Sprintf("%d.%02d KB", h/100, h%100)
}

// AppendQuery adds key=value to link, using & when link already carries a query.
// Slashes in value are kept as is, everything that would break the query is escaped.
func AppendQuery(link, key, value string) string {
	sep := "?"
	if strings.Contains(link, "?") {
		sep = "&"
	}

	return link + sep + key + "=" + strings.ReplaceAll(url.QueryEscape(value), "%2F", "/")
}
