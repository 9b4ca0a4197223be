package cfg

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// IDCfg returns the first n hex characters of a SHA-512 digest over a
// stable, sorted-key encoding of raw - the Go equivalent of the original
// system's xact.util.serialization.hexdigest applied to the merged
// config mapping (original used a YAML dump for a stable byte
// representation; we use a deterministic key-sorted textual encoding,
// since we are not carrying a YAML dependency - see DESIGN.md).
func IDCfg(raw RawConfig, n int) string {
	var sb strings.Builder
	encodeStable(&sb, raw)
	sum := sha512.Sum512([]byte(sb.String()))
	digest := hex.EncodeToString(sum[:])
	if n > len(digest) {
		n = len(digest)
	}
	return digest[:n]
}

func encodeStable(sb *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case RawConfig:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for _, k := range keys {
			sb.WriteString(k)
			sb.WriteByte(':')
			encodeStable(sb, val[k])
			sb.WriteByte(',')
		}
		sb.WriteByte('}')
	case []interface{}:
		sb.WriteByte('[')
		for _, item := range val {
			encodeStable(sb, item)
			sb.WriteByte(',')
		}
		sb.WriteByte(']')
	default:
		fmt.Fprintf(sb, "%v", val)
	}
}
