package infra

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// kst is fixed rather than looked up so the binary does not depend on the
// host tzdata.
var kst = time.FixedZone("KST", 9*60*60)

// FormatHashrate renders a units/sec value with MH/s / KH/s scaling,
// two decimal places.
func FormatHashrate(hashrate float64) string {
	v := decimal.NewFromFloat(hashrate)
	switch {
	case hashrate >= 1_000_000:
		return v.Div(decimal.NewFromInt(1_000_000)).StringFixed(2) + " MH/s"
	case hashrate >= 1_000:
		return v.Div(decimal.NewFromInt(1_000)).StringFixed(2) + " KH/s"
	}
	return v.String() + " H/s"
}

// FormatNumber inserts thousands separators: 1234567 → "1,234,567".
func FormatNumber(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatKST renders a timestamp in Korean local time.
func FormatKST(t time.Time) string {
	return t.In(kst).Format("2006-01-02 15:04:05")
}

// FormatKSTUnix renders a unix-seconds timestamp in Korean local time.
func FormatKSTUnix(sec int64) string {
	return FormatKST(time.Unix(sec, 0))
}
