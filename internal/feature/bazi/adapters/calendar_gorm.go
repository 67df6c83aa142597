// Package adapters はbaziフィーチャーの暦参照データのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bazi_backend/internal/feature/bazi/domain"
	"bazi_backend/internal/feature/bazi/domain/entity"
	"bazi_backend/internal/feature/bazi/usecase"
)

type calendarGorm struct {
	db *gorm.DB
}

var (
	_ usecase.CalendarRepository = (*calendarGorm)(nil)
	_ usecase.CalendarWriter     = (*calendarGorm)(nil)
)

// NewCalendarRepository は指定されたDB接続で calendar_days テーブルのリポジトリを生成します。
func NewCalendarRepository(db *gorm.DB) *calendarGorm {
	return &calendarGorm{db: db}
}

// CalendarDayModel は参照テーブルの一日分の行です。日付（"2006-01-02"）が主キーです。
type CalendarDayModel struct {
	Date       string    `gorm:"primaryKey;size:10"`
	Year       int       `gorm:"not null;index"`
	OccurredAt time.Time `gorm:"not null"`
	SolarTerm  string    `gorm:"size:16;not null;default:'';index"`
	DayPillar  string    `gorm:"size:16;not null"`

	HourZi   string `gorm:"size:16;not null;default:''"`
	HourChou string `gorm:"size:16;not null;default:''"`
	HourYin  string `gorm:"size:16;not null;default:''"`
	HourMao  string `gorm:"size:16;not null;default:''"`
	HourChen string `gorm:"size:16;not null;default:''"`
	HourSi   string `gorm:"size:16;not null;default:''"`
	HourWu   string `gorm:"size:16;not null;default:''"`
	HourWei  string `gorm:"size:16;not null;default:''"`
	HourShen string `gorm:"size:16;not null;default:''"`
	HourYou  string `gorm:"size:16;not null;default:''"`
	HourXu   string `gorm:"size:16;not null;default:''"`
	HourHai  string `gorm:"size:16;not null;default:''"`
}

func (CalendarDayModel) TableName() string {
	return "calendar_days"
}

func (m *CalendarDayModel) hours() [entity.HourBucketCount]*string {
	return [entity.HourBucketCount]*string{
		&m.HourZi, &m.HourChou, &m.HourYin, &m.HourMao, &m.HourChen, &m.HourSi,
		&m.HourWu, &m.HourWei, &m.HourShen, &m.HourYou, &m.HourXu, &m.HourHai,
	}
}

var hourColumns = []string{
	"hour_zi", "hour_chou", "hour_yin", "hour_mao", "hour_chen", "hour_si",
	"hour_wu", "hour_wei", "hour_shen", "hour_you", "hour_xu", "hour_hai",
}

func toModel(d entity.CalendarDay) CalendarDayModel {
	m := CalendarDayModel{
		Date:       entity.DateKey(d.Time),
		Year:       d.Time.Year(),
		OccurredAt: d.Time.UTC(),
		SolarTerm:  d.SolarTerm,
		DayPillar:  d.DayPillar,
	}
	for i, p := range m.hours() {
		*p = d.Hours[i]
	}
	return m
}

func (m CalendarDayModel) toRecord() (entity.DayRecord, error) {
	date, err := time.ParseInLocation(time.DateOnly, m.Date, time.UTC)
	if err != nil {
		return entity.DayRecord{}, fmt.Errorf("parse date %q: %w", m.Date, err)
	}
	rec := entity.DayRecord{Date: date, DayPillar: m.DayPillar}
	for i, p := range m.hours() {
		rec.Hours[i] = *p
	}
	return rec, nil
}

// UpsertBatch は日付をキーに行を挿入または更新します。
func (r *calendarGorm) UpsertBatch(ctx context.Context, days []entity.CalendarDay) error {
	if len(days) == 0 {
		return nil
	}
	ms := make([]CalendarDayModel, 0, len(days))
	for _, d := range days {
		ms = append(ms, toModel(d))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns(append([]string{"year", "occurred_at", "solar_term", "day_pillar"}, hourColumns...)),
	}).Create(&ms).Error
}

// SolarTerms は暦年が fromYear〜toYear の十二節の節入りを時刻の昇順で返します。
func (r *calendarGorm) SolarTerms(ctx context.Context, fromYear, toYear int) ([]entity.SolarTermEvent, error) {
	var rows []CalendarDayModel
	if err := r.db.WithContext(ctx).
		Select("date", "occurred_at", "solar_term").
		Where("year BETWEEN ? AND ? AND solar_term IN ?", fromYear, toYear, entity.MajorTermNames()).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, unavailable(err)
	}

	out := make([]entity.SolarTermEvent, 0, len(rows))
	for _, m := range rows {
		term, ok := entity.ParseMajorTerm(m.SolarTerm)
		if !ok {
			continue
		}
		out = append(out, entity.SolarTermEvent{Term: term, Time: m.OccurredAt.UTC()})
	}
	return out, nil
}

// DayRecord は指定日（時刻は無視）の参照データを返します。
func (r *calendarGorm) DayRecord(ctx context.Context, date time.Time) (entity.DayRecord, error) {
	var m CalendarDayModel
	err := r.db.WithContext(ctx).Where("date = ?", entity.DateKey(date)).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.DayRecord{}, fmt.Errorf("%w: no day record for %s", domain.ErrReferenceDataMissing, entity.DateKey(date))
	}
	if err != nil {
		return entity.DayRecord{}, unavailable(err)
	}
	rec, err := m.toRecord()
	if err != nil {
		return entity.DayRecord{}, fmt.Errorf("%w: %v", domain.ErrReferenceDataMissing, err)
	}
	return rec, nil
}

// Ready はDBに接続でき、参照テーブルに行があるかを確認します。
func (r *calendarGorm) Ready(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return unavailable(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	// 行の有無だけを見る（全件 COUNT はしない）
	var rows []CalendarDayModel
	if err := r.db.WithContext(ctx).Select("date").Limit(1).Find(&rows).Error; err != nil {
		return unavailable(err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: calendar_days is empty", domain.ErrProviderUnavailable)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
}
