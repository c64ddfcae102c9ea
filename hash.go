package statsig

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

const maxInt32 = math.MaxInt32

// hash64 hashes key with SHA-256 and interprets the first eight bytes of
// the digest as a big-endian unsigned 64-bit integer. Bucket assignment is
// exposure-observable: switching to little-endian changes which users pass
// a percentage rollout.
func hash64(key string) uint64 {
	sum := sha256.Sum256([]byte(key))
	return binary.BigEndian.Uint64(sum[:8])
}

// bucket maps a hash into [0, 10000).
func bucket(h uint64) uint64 {
	return h % 10000
}

// passesPercentage reports whether h's bucket falls under passPercentage
// (in [0, 100]). 100 is always-on, 0 is always-off.
func passesPercentage(h uint64, passPercentage float64) bool {
	return bucket(h) < uint64(passPercentage*100)
}

// toNumber coerces a JSON-like value to float64. Numbers pass through;
// strings are best-effort parsed; everything else (including unparseable
// strings) is absent.
func toNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toStringValue coerces a JSON-like value to its canonical string form.
func toStringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(val)
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case []interface{}, map[string]interface{}:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toEpochSeconds coerces a JSON-like value to a unix-epoch-seconds i64.
// Values whose magnitude exceeds i32::MAX are assumed to be millisecond
// timestamps and divided by 1000.
func toEpochSeconds(v interface{}) int64 {
	var n int64
	switch val := v.(type) {
	case nil, bool, []interface{}, map[string]interface{}:
		return 0
	case float64:
		n = int64(val)
	case float32:
		n = int64(val)
	case int:
		n = int64(val)
	case int32:
		n = int64(val)
	case int64:
		n = val
	case uint64:
		n = int64(val)
	case string:
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n > maxInt32 || n < -maxInt32 {
		n = n / 1000
	}
	return n
}
