// Package usecase は四柱推命の命式計算と参照データ取込のビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"bazi_backend/internal/feature/bazi/domain/entity"
)

// CalendarRepository は暦の参照データ（節入り時刻と日ごとの干支）の読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
//
// 実装は以下を守る必要があります。
//   - SolarTerms は暦年が fromYear〜toYear の十二節のみを時刻の昇順で返す
//   - DayRecord は該当日が無ければ domain.ErrReferenceDataMissing を返す
//   - データソース自体が使えない場合は domain.ErrProviderUnavailable を返す
type CalendarRepository interface {
	SolarTerms(ctx context.Context, fromYear, toYear int) ([]entity.SolarTermEvent, error)
	DayRecord(ctx context.Context, date time.Time) (entity.DayRecord, error)
}
