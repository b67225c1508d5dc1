package analyzer

import (
	"fmt"
	"math"
	"time"
)

// FormatSeconds 将秒数转换为报告中使用的字符串 (e.g. "1.234s")。
// NaN 表示没有可用数据。
func FormatSeconds(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3fs", v)
}

// FormatClock renders a completion timestamp the way the trace logger writes it.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// secondsToNanos converts fractional seconds to whole nanoseconds, rounding
// to the nearest nanosecond.
func secondsToNanos(s float64) int64 {
	return int64(math.Round(s * float64(time.Second)))
}
