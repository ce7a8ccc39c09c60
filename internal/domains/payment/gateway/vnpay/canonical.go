package vnpay

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

// =====================================================
// CANONICALIZATION
// =====================================================

// vnLocation is the zone every VNPay timestamp is rendered in.
var vnLocation = loadVNLocation()

func loadVNLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// FormatDate renders t as yyyyMMddHHmmss in Asia/Ho_Chi_Minh, whatever the host zone is.
func FormatDate(t time.Time) string {
	return t.In(vnLocation).Format(DateLayout)
}

// ParseDate is the inverse of FormatDate.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, vnLocation)
}

// Param is one percent-encoded key/value pair.
type Param struct {
	Key   string
	Value string
}

// Canonical is a parameter set after encoding and sorting. Its String form is
// the exact message that gets signed and verified.
type Canonical []Param

// String joins the pairs as key=value with '&'. Values are already encoded and
// are not encoded again.
func (c Canonical) String() string {
	var b strings.Builder
	for i, p := range c {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Lookup returns the encoded value stored under the raw key.
func (c Canonical) Lookup(key string) (string, bool) {
	encoded := encode(key)
	for _, p := range c {
		if p.Key == encoded {
			return p.Value, true
		}
	}
	return "", false
}

// Canonicalize encodes every key and value, drops empty and nil values, and
// sorts by encoded key in byte order. Zero numbers are kept.
func Canonicalize[V any](params map[string]V) Canonical {
	out := make(Canonical, 0, len(params))
	for key, raw := range params {
		value, ok := formatValue(raw)
		if !ok || value == "" {
			continue
		}
		out = append(out, Param{Key: encode(key), Value: encode(value)})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// encode applies URL query escaping. QueryEscape already renders a space as
// '+', which is the form VNPay accepts.
func encode(s string) string {
	return url.QueryEscape(s)
}

// formatValue renders a parameter value as its wire string. The bool result is
// false for values that must be left out entirely.
func formatValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint32:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case decimal.Decimal:
		return t.String(), true
	case *decimal.Decimal:
		if t == nil {
			return "", false
		}
		return t.String(), true
	case time.Time:
		if t.IsZero() {
			return "", false
		}
		return FormatDate(t), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return "", false
		}
		return FormatDate(*t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
