package ledger

import (
	"strconv"
	"strings"
	"time"
)

// 月份窗口限制
const (
	DefaultMonths = 6
	MaxMonths     = 24
)

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthLabel 月份缩写（pt-BR），month 取 1..12
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthLabels[month-1]
}

// ClampMonths 解析月份数，非法值回落到默认值，范围 [1, 24]
func ClampMonths(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultMonths
	}
	if n < 1 {
		return 1
	}
	if n > MaxMonths {
		return MaxMonths
	}
	return n
}

// YearMonth 年月
type YearMonth struct {
	Year  int
	Month int
}

// Window 连续的自然月窗口，Start 为首月第一天，End 为末月最后一天
type Window struct {
	Start  time.Time
	End    time.Time
	Months []YearMonth
}

// MonthBounds 指定月份的第一天与最后一天
func MonthBounds(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// MonthWindow 以 today 所在月为最后一个月，向前共 n 个月
func MonthWindow(today time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	year, month := today.Year(), int(today.Month())-(n-1)
	for month <= 0 {
		month += 12
		year--
	}

	months := make([]YearMonth, 0, n)
	y, m := year, month
	for i := 0; i < n; i++ {
		months = append(months, YearMonth{Year: y, Month: m})
		m++
		if m > 12 {
			m = 1
			y++
		}
	}

	start, _ := MonthBounds(year, month, today.Location())
	_, end := MonthBounds(today.Year(), int(today.Month()), today.Location())
	return Window{Start: start, End: end, Months: months}
}

// PreviousMonth 上一个自然月
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// ParseYearMonth 解析年月，非法时回落到 today 所在月
func ParseYearMonth(rawYear, rawMonth string, today time.Time) (int, int) {
	y, errY := strconv.Atoi(strings.TrimSpace(rawYear))
	m, errM := strconv.Atoi(strings.TrimSpace(rawMonth))
	if errY != nil || errM != nil || m < 1 || m > 12 || y < 1 {
		return today.Year(), int(today.Month())
	}
	return y, m
}

// DayKey 日期按 YYYY-MM-DD 绑定到 DATE 列，与连接时区无关
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
}
