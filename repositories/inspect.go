package repositories

import (
	"fmt"
	"strings"
	"time"
)

// InspectDetail decodes a raw key/value pair into a human readable kind
// and summary for the debug inspector. Unknown key prefixes fall back to
// a byte count so the inspector never fails on foreign data.
func InspectDetail(key string, val []byte) (kind, detail string) {
	switch {
	case strings.HasPrefix(key, "user:id:"):
		var record userRecord
		if err := unmarshalValue(val, &record); err != nil {
			return "USER", "unmarshal failed"
		}
		return "USER", fmt.Sprintf("%s <%s>", record.Username, record.Email)

	case strings.HasPrefix(key, "user:email:"), strings.HasPrefix(key, "user:name:"):
		return "INDEX", string(val)

	case strings.HasPrefix(key, "chat:"):
		var record chatRecord
		if err := unmarshalValue(val, &record); err != nil {
			return "CHAT", "unmarshal failed"
		}
		return "CHAT", fmt.Sprintf("%s <-> %s", record.Members[0], record.Members[1])

	case strings.HasPrefix(key, "chatmember:"), strings.HasPrefix(key, "chatpair:"):
		return "INDEX", string(val)

	case strings.HasPrefix(key, "msg:"):
		var record messageRecord
		if err := unmarshalValue(val, &record); err != nil {
			return "MESSAGE", "unmarshal failed"
		}
		return "MESSAGE", fmt.Sprintf("[%s] %s: %s",
			time.Unix(0, record.At).UTC().Format(time.RFC3339), record.Sender, record.Content)

	default:
		return "UNKNOWN", fmt.Sprintf("%d bytes", len(val))
	}
}
