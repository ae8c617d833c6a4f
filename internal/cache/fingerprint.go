package cache

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint derives a stable key from a namespace and ordered parts. Parts
// are length-prefixed so ("ab","c") and ("a","bc") never collide.
func Fingerprint(namespace string, parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return namespace + ":" + strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}
