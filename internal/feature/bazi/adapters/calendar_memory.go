package adapters

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"bazi_backend/internal/feature/bazi/domain"
	"bazi_backend/internal/feature/bazi/domain/entity"
	"bazi_backend/internal/feature/bazi/usecase"
)

// MemoryCalendar は参照テーブル全体をメモリに保持する CalendarRepository 実装です。
// Replace で読み込みが完了するまでは domain.ErrProviderUnavailable を返します。
type MemoryCalendar struct {
	mu     sync.RWMutex
	loaded bool
	terms  []entity.SolarTermEvent
	days   map[string]entity.DayRecord
}

var _ usecase.CalendarRepository = (*MemoryCalendar)(nil)

// NewMemoryCalendar は未ロード状態の MemoryCalendar を生成します。
func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{}
}

// Replace は保持しているデータを days で置き換えます。
// 同じ日付が複数ある場合は後の行が優先されます。
func (c *MemoryCalendar) Replace(days []entity.CalendarDay) {
	index := make(map[string]entity.DayRecord, len(days))
	terms := make([]entity.SolarTermEvent, 0, len(days)/15+1)
	for _, d := range days {
		index[entity.DateKey(d.Time)] = d.Record()
		if ev, ok := d.TermEvent(); ok {
			terms = append(terms, ev)
		}
	}
	slices.SortFunc(terms, func(a, b entity.SolarTermEvent) int {
		return a.Time.Compare(b.Time)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.terms = terms
	c.days = index
	c.loaded = true
}

// Ready はデータの読み込みが完了しているかを返します。
func (c *MemoryCalendar) Ready(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return fmt.Errorf("%w: calendar data not loaded", domain.ErrProviderUnavailable)
	}
	if len(c.days) == 0 {
		return fmt.Errorf("%w: calendar data is empty", domain.ErrProviderUnavailable)
	}
	return nil
}

// SolarTerms は暦年が fromYear〜toYear の十二節を時刻の昇順で返します。
func (c *MemoryCalendar) SolarTerms(ctx context.Context, fromYear, toYear int) ([]entity.SolarTermEvent, error) {
	if err := c.Ready(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Filter(c.terms, func(ev entity.SolarTermEvent, _ int) bool {
		y := ev.Time.Year()
		return y >= fromYear && y <= toYear
	}), nil
}

// DayRecord は指定日の参照データを返します。
func (c *MemoryCalendar) DayRecord(ctx context.Context, date time.Time) (entity.DayRecord, error) {
	if err := c.Ready(ctx); err != nil {
		return entity.DayRecord{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.days[entity.DateKey(date)]
	if !ok {
		return entity.DayRecord{}, fmt.Errorf("%w: no day record for %s", domain.ErrReferenceDataMissing, entity.DateKey(date))
	}
	return rec, nil
}
