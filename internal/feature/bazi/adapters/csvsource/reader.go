// Package csvsource は参照テーブルのCSVファイル（日期・节气・干支・時辰ごとの干支）を読み込む CalendarSource 実装です。
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"bazi_backend/internal/feature/bazi/domain/entity"
	"bazi_backend/internal/feature/bazi/usecase"
)

const (
	ColumnDate      = "日期"
	ColumnSolarTerm = "节气"
	ColumnDayPillar = "干支"

	ctxCheckInterval = 1000 // この行数ごとにキャンセルを確認
)

// ErrHeader はヘッダー行に必須の列がない場合のエラーです。
var ErrHeader = errors.New("csvsource: invalid header")

// 日期列で受け付ける書式（秒あり・なし、ハイフン・スラッシュ区切り）
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
}

// File はディスク上のCSVファイルです。Encoding は gbk / gb18030 / utf-8 のいずれかです。
type File struct {
	Path     string
	Encoding string
}

var _ usecase.CalendarSource = File{}

// ReadCalendar はファイルを開き、全行を CalendarDay に変換します。
func (f File) ReadCalendar(ctx context.Context) ([]entity.CalendarDay, error) {
	enc, err := lookupEncoding(f.Encoding)
	if err != nil {
		return nil, err
	}
	fp, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open calendar csv: %w", err)
	}
	defer func() { _ = fp.Close() }()

	return Decode(ctx, transform.NewReader(fp, enc.NewDecoder()))
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gbk", "cp936":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("csvsource: unsupported encoding %q", name)
	}
}

type columns struct {
	date, term, day int
	hours           [entity.HourBucketCount]int
}

// Decode はUTF-8のCSVを読み込みます。1行目はヘッダーです。
func Decode(ctx context.Context, r io.Reader) ([]entity.CalendarDay, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var out []entity.CalendarDay
	for line := 2; ; line++ {
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		day, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, day)
	}
	return out, nil
}

func parseHeader(header []string) (columns, error) {
	cols := columns{date: -1, term: -1, day: -1}
	for i := range cols.hours {
		cols.hours[i] = -1
	}

	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case ColumnDate:
			cols.date = i
		case ColumnSolarTerm:
			cols.term = i
		case ColumnDayPillar:
			cols.day = i
		default:
			if b, ok := hourColumn(h); ok {
				cols.hours[b.Index()] = i
			}
		}
	}

	if cols.date < 0 || cols.day < 0 {
		return cols, fmt.Errorf("%w: %q and %q columns are required", ErrHeader, ColumnDate, ColumnDayPillar)
	}
	return cols, nil
}

// hourColumn は "子（23-1）" や "丑(1-3)" のような時辰列の見出しを判定します。
func hourColumn(h string) (entity.Branch, bool) {
	r, size := utf8.DecodeRuneInString(h)
	if r == utf8.RuneError {
		return 0, false
	}
	rest := h[size:]
	if !strings.HasPrefix(rest, "(") && !strings.HasPrefix(rest, "（") {
		return 0, false
	}
	return entity.ParseBranch(string(r))
}

func parseRow(rec []string, cols columns) (entity.CalendarDay, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		v := strings.TrimSpace(rec[i])
		// pandas で書き出した欠損値
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}

	ts, err := parseDate(cell(cols.date))
	if err != nil {
		return entity.CalendarDay{}, err
	}
	day := entity.CalendarDay{
		Time:      ts,
		SolarTerm: cell(cols.term),
		DayPillar: cell(cols.day),
	}
	for b, i := range cols.hours {
		day.Hours[b] = cell(i)
	}
	return day, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse %s %q: unsupported format", ColumnDate, s)
}
