package entity

import (
	"fmt"
	"time"
)

// SolarTerm は月の境界となる十二節（立春〜小寒）です。値は年内の順序 0〜11 で、
// そのまま月インデックスとして使います。
type SolarTerm int

const (
	LiChun    SolarTerm = iota // 立春（年の境界）
	JingZhe                    // 惊蛰
	QingMing                   // 清明
	LiXia                      // 立夏
	MangZhong                  // 芒种
	XiaoShu                    // 小暑
	LiQiu                      // 立秋
	BaiLu                      // 白露
	HanLu                      // 寒露
	LiDong                     // 立冬
	DaXue                      // 大雪
	XiaoHan                    // 小寒
)

// MajorTermCount は十二節の数です。
const MajorTermCount = 12

var majorTermNames = [MajorTermCount]string{
	"立春", "惊蛰", "清明", "立夏", "芒种", "小暑", "立秋", "白露", "寒露", "立冬", "大雪", "小寒",
}

// MajorTermNames は十二節の名称を年内の順に返します。
func MajorTermNames() []string {
	out := make([]string, MajorTermCount)
	copy(out, majorTermNames[:])
	return out
}

func (t SolarTerm) String() string {
	if t < 0 || int(t) >= MajorTermCount {
		return fmt.Sprintf("SolarTerm(%d)", int(t))
	}
	return majorTermNames[t]
}

// ParseMajorTerm は名称から十二節を返します。中気（雨水・春分など）は ok=false です。
func ParseMajorTerm(name string) (SolarTerm, bool) {
	for i, n := range majorTermNames {
		if n == name {
			return SolarTerm(i), true
		}
	}
	return 0, false
}

// SolarTermEvent は節入りの時刻です。
type SolarTermEvent struct {
	Term SolarTerm
	Time time.Time
}

// HourBucketCount は一日の時辰の数です。
const HourBucketCount = 12

// HourBucket は時刻（時）が属する時辰のインデックスを返します。
// 0 は子の刻（23:00〜00:59）、以降は 01:00 から二時間ごとです。
func HourBucket(hour int) int {
	return ((hour + 1) / 2) % HourBucketCount
}

// DayRecord は参照データにある一日分の干支です。
// Hours の空文字は値の欠落を意味します。
type DayRecord struct {
	Date      time.Time
	DayPillar string
	Hours     [HourBucketCount]string
}

// CalendarDay は参照テーブルの一行です。
// Time は節入り日であればその時刻、それ以外は日付の 0 時です。
// SolarTerm は二十四節気のいずれか、または空文字です。
type CalendarDay struct {
	Time      time.Time
	SolarTerm string
	DayPillar string
	Hours     [HourBucketCount]string
}

// DateKey は日付検索に使う "2006-01-02" 形式の文字列を返します。
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Record は行を DayRecord に変換します。
func (d CalendarDay) Record() DayRecord {
	y, m, day := d.Time.Date()
	return DayRecord{
		Date:      time.Date(y, m, day, 0, 0, 0, 0, time.UTC),
		DayPillar: d.DayPillar,
		Hours:     d.Hours,
	}
}

// TermEvent は行が十二節の節入りであればその SolarTermEvent を返します。
func (d CalendarDay) TermEvent() (SolarTermEvent, bool) {
	t, ok := ParseMajorTerm(d.SolarTerm)
	if !ok {
		return SolarTermEvent{}, false
	}
	return SolarTermEvent{Term: t, Time: d.Time}, true
}
