package cache

import (
	"strconv"
)

// Key combines a profile id with a 32-bit rolling hash of the content.
// The hash multiplies by 31 and adds each character code, wrapping in
// signed 32-bit arithmetic, so equal content always lands on the same
// entry regardless of length.
func Key(profileID, content string) string {
	var hash int32
	for _, r := range content {
		hash = hash*31 + int32(r)
	}
	return profileID + ":" + strconv.FormatInt(int64(hash), 10)
}
