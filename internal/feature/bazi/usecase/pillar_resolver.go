package usecase

import (
	"fmt"
	"time"

	"bazi_backend/internal/feature/bazi/domain"
	"bazi_backend/internal/feature/bazi/domain/entity"
)

// ReferenceYear は六十干支の起点（甲子）となる西暦年です。
const ReferenceYear = 1984

// resolution は四柱と、その過程で特定した支配節（出生時刻以前で最後の節入り）です。
// 支配節は逆行時の起運計算でも使います。
type resolution struct {
	chart     entity.Chart
	governing entity.SolarTermEvent
}

// resolvePillars は出生時刻・節入り一覧・当日の参照データから四柱を求めます。
// terms は時刻の昇順である必要があります。
func resolvePillars(birth time.Time, terms []entity.SolarTermEvent, day entity.DayRecord) (resolution, error) {
	year := yearPillar(birth, terms)

	governing, ok := governingTerm(birth, terms)
	if !ok {
		return resolution{}, fmt.Errorf("%w: no solar term at or before %s", domain.ErrReferenceDataMissing, birth.Format(entity.BirthTimeLayout))
	}
	month := monthPillar(year.Stem, governing.Term)

	dayPillar, err := entity.ParseGanZhi(day.DayPillar)
	if err != nil {
		return resolution{}, fmt.Errorf("%w: day pillar for %s: %v", domain.ErrReferenceDataMissing, entity.DateKey(birth), err)
	}

	hour, err := hourPillar(birth, day)
	if err != nil {
		return resolution{}, err
	}

	return resolution{
		chart:     entity.Chart{Year: year, Month: month, Day: dayPillar, Hour: hour},
		governing: governing,
	}, nil
}

// yearPillar は立春を年の境界として年柱を求めます。
// 出生年の立春が参照データに無い場合は暦年のまま計算します。
func yearPillar(birth time.Time, terms []entity.SolarTermEvent) entity.GanZhi {
	y := birth.Year()
	for _, ev := range terms {
		if ev.Term == entity.LiChun && ev.Time.Year() == y {
			if birth.Before(ev.Time) {
				y--
			}
			break
		}
	}
	return entity.CycleAt(y - ReferenceYear)
}

// governingTerm は出生時刻以前（同時刻を含む）で最後の節入りを返します。
func governingTerm(birth time.Time, terms []entity.SolarTermEvent) (entity.SolarTermEvent, bool) {
	var (
		last  entity.SolarTermEvent
		found bool
	)
	for _, ev := range terms {
		if ev.Time.After(birth) {
			break
		}
		last, found = ev, true
	}
	return last, found
}

// nextTerm は出生時刻より後で最初の節入りを返します。
func nextTerm(birth time.Time, terms []entity.SolarTermEvent) (entity.SolarTermEvent, bool) {
	for _, ev := range terms {
		if ev.Time.After(birth) {
			return ev, true
		}
	}
	return entity.SolarTermEvent{}, false
}

// monthPillar は年干と月インデックス（立春=0）から月柱を求めます。
// 天干は (年干 mod 5) * 2 を立春月の起点とし（甲己の年は甲寅、乙庚は丙寅、丙辛は戊寅、丁壬は庚寅、戊癸は壬寅）、
// 地支は寅（インデックス2）から始まります。参照データの算出方法に合わせており、古典の五虎遁より二干前にずれます。
func monthPillar(yearStem entity.Stem, term entity.SolarTerm) entity.GanZhi {
	monthIndex := int(term)
	firstStem := (yearStem.Index() % 5) * 2
	return entity.GanZhi{
		Stem:   entity.Stem((firstStem + monthIndex) % entity.StemCount),
		Branch: entity.Branch((monthIndex + 2) % entity.BranchCount),
	}
}

// hourPillar は出生時刻の時辰に対応する時柱を当日の参照データから取り出します。
// 23時台も当日の子の刻として扱います。
func hourPillar(birth time.Time, day entity.DayRecord) (entity.GanZhi, error) {
	bucket := entity.HourBucket(birth.Hour())
	label := day.Hours[bucket]
	if label == "" {
		return entity.GanZhi{}, fmt.Errorf("%w: no hour pillar for %s hour %d", domain.ErrReferenceDataMissing, entity.DateKey(birth), birth.Hour())
	}
	g, err := entity.ParseGanZhi(label)
	if err != nil {
		return entity.GanZhi{}, fmt.Errorf("%w: hour pillar for %s: %v", domain.ErrReferenceDataMissing, entity.DateKey(birth), err)
	}
	return g, nil
}
