package orders

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewOrderID mints a short collision-resistant order identifier. The leading
// time component keeps ids roughly sortable by creation time, which the
// admin console relies on for traceability.
func NewOrderID() string {
	return "ord_" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "_" + randomSuffix(3)
}

func randomSuffix(bytes int) string {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}
