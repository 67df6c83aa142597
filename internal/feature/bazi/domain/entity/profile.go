package entity

import (
	"fmt"
	"strings"
	"time"

	"bazi_backend/internal/feature/bazi/domain"
)

// BirthTimeLayout は受け付ける出生日時の形式です（分単位）。
const BirthTimeLayout = "2006-01-02 15:04"

// Gender は性別です。男・女の二値のみを受け付けます。
type Gender int

const (
	Male Gender = iota
	Female
)

func (g Gender) String() string {
	if g == Male {
		return "男"
	}
	return "女"
}

// ParseGender は "男" / "女" を Gender に変換します。
func ParseGender(s string) (Gender, error) {
	switch strings.TrimSpace(s) {
	case "男":
		return Male, nil
	case "女":
		return Female, nil
	}
	return 0, fmt.Errorf("%w: gender must be 男 or 女, got %q", domain.ErrMalformedInput, s)
}

// ParseBirthTime は "YYYY-MM-DD HH:MM" 形式の日時をパースします。
// 参照データはタイムゾーンを持たない現地時刻なので、UTC の壁時計として扱います。
func ParseBirthTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(BirthTimeLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birth time must be in %q format, got %q", domain.ErrMalformedInput, BirthTimeLayout, s)
	}
	return t, nil
}

// BirthMoment は計算の入力です。
type BirthMoment struct {
	Time   time.Time
	Gender Gender
}

// ParseBirthMoment は生の入力値を検証して BirthMoment を生成します。
func ParseBirthMoment(birthTime, gender string) (BirthMoment, error) {
	t, err := ParseBirthTime(birthTime)
	if err != nil {
		return BirthMoment{}, err
	}
	g, err := ParseGender(gender)
	if err != nil {
		return BirthMoment{}, err
	}
	return BirthMoment{Time: t, Gender: g}, nil
}

// Chart は四柱（年・月・日・時）です。
type Chart struct {
	Year  GanZhi
	Month GanZhi
	Day   GanZhi
	Hour  GanZhi
}

// Direction は大運の進む向きです。
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "reverse"
}

// Label は「顺行」「逆行」を返します。
func (d Direction) Label() string {
	if d == Forward {
		return "顺行"
	}
	return "逆行"
}

// OnsetAge は起運までの年・月・日です。
type OnsetAge struct {
	Years  int
	Months int
	Days   int
}

// Label は「3岁 4个月 15天后」の形式で返します。
func (o OnsetAge) Label() string {
	return fmt.Sprintf("%d岁 %d个月 %d天后", o.Years, o.Months, o.Days)
}

// LuckPillar は大運の一歩です。Age はその大運が始まる年齢です。
type LuckPillar struct {
	Step   int
	Age    int
	Pillar GanZhi
}

// LuckSteps は算出する大運の数です。
const LuckSteps = 9

// LuckSpanYears は大運一歩あたりの年数です。
const LuckSpanYears = 10

// LuckSchedule は大運の向き・起運年齢・九歩の大運です。
type LuckSchedule struct {
	Direction Direction
	Onset     OnsetAge
	Pillars   []LuckPillar
}

// Profile は一回の計算結果です。
type Profile struct {
	Birth BirthMoment
	Chart Chart
	Luck  LuckSchedule
}
