package usecase

import (
	"fmt"
	"math"
	"time"

	"bazi_backend/internal/feature/bazi/domain"
	"bazi_backend/internal/feature/bazi/domain/entity"
)

const (
	secondsPerDay = 24 * 60 * 60
	// daysPerLuckYear は「三日を一年とする」換算です。
	daysPerLuckYear = 3
	// monthsPerLuckDay は一日を四か月に換算します（12か月 / 3日）。
	monthsPerLuckDay = 4
	daysPerLuckMonth = 30
	// ceilEpsilon は浮動小数点誤差で日数が切り上がり過ぎるのを防ぎます。
	ceilEpsilon = 1e-9
)

// luckDirection は年干の陰陽と性別から大運の向きを決めます。
// 陽年の男性・陰年の女性が順行、それ以外が逆行です。
func luckDirection(yearStem entity.Stem, gender entity.Gender) entity.Direction {
	isYangYear := yearStem.Polarity() == entity.Yang
	isMale := gender == entity.Male
	if isYangYear == isMale {
		return entity.Forward
	}
	return entity.Reverse
}

// onsetElapsed は起運計算に使う経過時間を返します。
// 順行は次の節入りまで、逆行は支配節から出生時刻までです。
func onsetElapsed(birth time.Time, dir entity.Direction, terms []entity.SolarTermEvent, governing entity.SolarTermEvent) (time.Duration, error) {
	if dir == entity.Reverse {
		return birth.Sub(governing.Time), nil
	}
	next, ok := nextTerm(birth, terms)
	if !ok {
		return 0, fmt.Errorf("%w: no solar term after %s", domain.ErrReferenceDataMissing, birth.Format(entity.BirthTimeLayout))
	}
	return next.Time.Sub(birth), nil
}

// onsetAge は経過時間を起運年齢に換算します。
//
//	years  = floor(days / 3)
//	months = floor((days mod 3) * 4)
//	days   = ceil(frac((days mod 3) * 4) * 30)
func onsetAge(elapsed time.Duration) entity.OnsetAge {
	days := elapsed.Seconds() / secondsPerDay
	if days < 0 {
		days = 0
	}
	years := math.Floor(days / daysPerLuckYear)
	months := math.Mod(days, daysPerLuckYear) * monthsPerLuckDay
	wholeMonths := math.Floor(months)
	remDays := math.Ceil((months-wholeMonths)*daysPerLuckMonth - ceilEpsilon)
	if remDays < 0 {
		remDays = 0
	}
	return entity.OnsetAge{
		Years:  int(years),
		Months: int(wholeMonths),
		Days:   int(remDays),
	}
}

// luckPillars は月柱から向きに沿って九歩の大運を並べます。
// 各大運の年齢は起運年から10年刻みです。
func luckPillars(month entity.GanZhi, dir entity.Direction, onsetYears int) []entity.LuckPillar {
	m := month.Index()
	step := 1
	if dir == entity.Reverse {
		step = -1
	}
	out := make([]entity.LuckPillar, 0, entity.LuckSteps)
	for k := 1; k <= entity.LuckSteps; k++ {
		out = append(out, entity.LuckPillar{
			Step:   k,
			Age:    onsetYears + (k-1)*entity.LuckSpanYears,
			Pillar: entity.CycleAt(m + step*k),
		})
	}
	return out
}

// calculateLuck は大運の向き・起運年齢・大運を求めます。
func calculateLuck(moment entity.BirthMoment, res resolution, terms []entity.SolarTermEvent) (entity.LuckSchedule, error) {
	dir := luckDirection(res.chart.Year.Stem, moment.Gender)
	elapsed, err := onsetElapsed(moment.Time, dir, terms, res.governing)
	if err != nil {
		return entity.LuckSchedule{}, err
	}
	onset := onsetAge(elapsed)
	return entity.LuckSchedule{
		Direction: dir,
		Onset:     onset,
		Pillars:   luckPillars(res.chart.Month, dir, onset.Years),
	}, nil
}
