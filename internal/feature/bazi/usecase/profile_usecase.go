package usecase

import (
	"context"

	"bazi_backend/internal/feature/bazi/domain/entity"
)

// termYearMargin は節入りを取得する出生年前後の年数です。
// 一月生まれの支配節（前年の大雪）と十二月生まれの次の節（翌年の小寒）を含めるために1年必要です。
const termYearMargin = 1

// ProfileUsecase は出生日時と性別から命式（四柱と大運）を計算するユースケースです。
// 状態を持たないため、複数のリクエストから並行して呼び出せます。
type ProfileUsecase struct {
	calendar CalendarRepository
}

// NewProfileUsecase はProfileUsecaseの新しいインスタンスを生成します。
func NewProfileUsecase(calendar CalendarRepository) *ProfileUsecase {
	return &ProfileUsecase{calendar: calendar}
}

// ComputeProfile は "YYYY-MM-DD HH:MM" 形式の出生日時と性別（男/女）から命式を計算します。
//
// エラーは domain パッケージのセンチネルをラップして返します。
//   - 入力が不正: domain.ErrMalformedInput
//   - 参照データに該当が無い: domain.ErrReferenceDataMissing
//   - 参照データの提供元が使えない: domain.ErrProviderUnavailable
//
// 途中で失敗した場合に部分的な結果は返しません。
func (u *ProfileUsecase) ComputeProfile(ctx context.Context, birthTime, gender string) (entity.Profile, error) {
	moment, err := entity.ParseBirthMoment(birthTime, gender)
	if err != nil {
		return entity.Profile{}, err
	}

	y := moment.Time.Year()
	terms, err := u.calendar.SolarTerms(ctx, y-termYearMargin, y+termYearMargin)
	if err != nil {
		return entity.Profile{}, err
	}

	day, err := u.calendar.DayRecord(ctx, moment.Time)
	if err != nil {
		return entity.Profile{}, err
	}

	res, err := resolvePillars(moment.Time, terms, day)
	if err != nil {
		return entity.Profile{}, err
	}

	luck, err := calculateLuck(moment, res, terms)
	if err != nil {
		return entity.Profile{}, err
	}

	return entity.Profile{Birth: moment, Chart: res.chart, Luck: luck}, nil
}
