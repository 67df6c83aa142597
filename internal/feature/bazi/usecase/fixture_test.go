package usecase_test

import (
	"context"
	"errors"
	"time"

	"bazi_backend/internal/feature/bazi/domain"
	"bazi_backend/internal/feature/bazi/domain/entity"
)

// mockCalendarRepository はCalendarRepositoryインターフェースのモック実装です。
type mockCalendarRepository struct {
	SolarTermsFunc func(ctx context.Context, fromYear, toYear int) ([]entity.SolarTermEvent, error)
	DayRecordFunc  func(ctx context.Context, date time.Time) (entity.DayRecord, error)
	SolarTermsCall int
	DayRecordCall  int
}

func (m *mockCalendarRepository) SolarTerms(ctx context.Context, fromYear, toYear int) ([]entity.SolarTermEvent, error) {
	m.SolarTermsCall++
	if m.SolarTermsFunc != nil {
		return m.SolarTermsFunc(ctx, fromYear, toYear)
	}
	return nil, errors.New("SolarTermsFunc is not implemented")
}

func (m *mockCalendarRepository) DayRecord(ctx context.Context, date time.Time) (entity.DayRecord, error) {
	m.DayRecordCall++
	if m.DayRecordFunc != nil {
		return m.DayRecordFunc(ctx, date)
	}
	return entity.DayRecord{}, errors.New("DayRecordFunc is not implemented")
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

// fixtureTerms は1989〜1991年の十二節です。1990年の立春と惊蛰は計算しやすい時刻に丸めています。
func fixtureTerms() []entity.SolarTermEvent {
	return []entity.SolarTermEvent{
		{Term: entity.XiaoHan, Time: at(1989, 1, 5, 10, 46)},
		{Term: entity.LiChun, Time: at(1989, 2, 4, 10, 27)},
		{Term: entity.JingZhe, Time: at(1989, 3, 5, 16, 34)},
		{Term: entity.QingMing, Time: at(1989, 4, 4, 21, 30)},
		{Term: entity.LiXia, Time: at(1989, 5, 5, 15, 54)},
		{Term: entity.MangZhong, Time: at(1989, 6, 5, 20, 5)},
		{Term: entity.XiaoShu, Time: at(1989, 7, 7, 6, 19)},
		{Term: entity.LiQiu, Time: at(1989, 8, 7, 16, 4)},
		{Term: entity.BaiLu, Time: at(1989, 9, 7, 18, 54)},
		{Term: entity.HanLu, Time: at(1989, 10, 8, 10, 27)},
		{Term: entity.LiDong, Time: at(1989, 11, 7, 13, 34)},
		{Term: entity.DaXue, Time: at(1989, 12, 7, 6, 21)},
		{Term: entity.XiaoHan, Time: at(1990, 1, 5, 17, 33)},
		{Term: entity.LiChun, Time: at(1990, 2, 4, 14, 0)},
		{Term: entity.JingZhe, Time: at(1990, 3, 6, 8, 0)},
		{Term: entity.QingMing, Time: at(1990, 4, 5, 3, 13)},
		{Term: entity.LiXia, Time: at(1990, 5, 5, 20, 35)},
		{Term: entity.MangZhong, Time: at(1990, 6, 6, 0, 46)},
		{Term: entity.XiaoShu, Time: at(1990, 7, 7, 11, 0)},
		{Term: entity.LiQiu, Time: at(1990, 8, 7, 20, 46)},
		{Term: entity.BaiLu, Time: at(1990, 9, 8, 0, 37)},
		{Term: entity.HanLu, Time: at(1990, 10, 8, 16, 14)},
		{Term: entity.LiDong, Time: at(1990, 11, 7, 19, 23)},
		{Term: entity.DaXue, Time: at(1990, 12, 7, 12, 14)},
		{Term: entity.XiaoHan, Time: at(1991, 1, 5, 23, 28)},
		{Term: entity.LiChun, Time: at(1991, 2, 4, 22, 8)},
	}
}

// dayRecord は日柱から五鼠遁で時柱を並べた参照データを作ります。
func dayRecord(date time.Time, dayPillar string) entity.DayRecord {
	g, err := entity.ParseGanZhi(dayPillar)
	if err != nil {
		panic(err)
	}
	rec := entity.DayRecord{Date: date, DayPillar: dayPillar}
	start := (g.Stem.Index() % 5) * 2
	for i := range rec.Hours {
		rec.Hours[i] = entity.GanZhi{
			Stem:   entity.Stem((start + i) % entity.StemCount),
			Branch: entity.Branch(i),
		}.String()
	}
	return rec
}

// fixtureDays は1990-02-04（庚子）と1990-03-05（己巳）の参照データです。
func fixtureDays() map[string]entity.DayRecord {
	return map[string]entity.DayRecord{
		"1990-02-04": dayRecord(at(1990, 2, 4, 0, 0), "庚子"),
		"1990-03-05": dayRecord(at(1990, 3, 5, 0, 0), "己巳"),
	}
}

// newFixtureRepository はフィクスチャを返すモックリポジトリを作ります。
func newFixtureRepository() *mockCalendarRepository {
	terms := fixtureTerms()
	days := fixtureDays()
	return &mockCalendarRepository{
		SolarTermsFunc: func(_ context.Context, fromYear, toYear int) ([]entity.SolarTermEvent, error) {
			var out []entity.SolarTermEvent
			for _, ev := range terms {
				if y := ev.Time.Year(); y >= fromYear && y <= toYear {
					out = append(out, ev)
				}
			}
			return out, nil
		},
		DayRecordFunc: func(_ context.Context, date time.Time) (entity.DayRecord, error) {
			rec, ok := days[entity.DateKey(date)]
			if !ok {
				return entity.DayRecord{}, domain.ErrReferenceDataMissing
			}
			return rec, nil
		},
	}
}
