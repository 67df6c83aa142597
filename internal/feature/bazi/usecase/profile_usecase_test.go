package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazi_backend/internal/feature/bazi/domain"
	"bazi_backend/internal/feature/bazi/domain/entity"
	"bazi_backend/internal/feature/bazi/usecase"
)

func pillarLabels(ps []entity.LuckPillar) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Pillar.String())
	}
	return out
}

func pillarAges(ps []entity.LuckPillar) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Age)
	}
	return out
}

// TestProfileUsecase_ComputeProfile_Male は陽年（庚午）生まれの男性が順行になり、次の節入りまでの時間から起運を求めることを検証します。
func TestProfileUsecase_ComputeProfile_Male(t *testing.T) {
	t.Parallel()

	repo := newFixtureRepository()
	uc := usecase.NewProfileUsecase(repo)

	p, err := uc.ComputeProfile(context.Background(), "1990-03-05 14:00", "男")
	require.NoError(t, err)

	assert.Equal(t, at(1990, 3, 5, 14, 0), p.Birth.Time)
	assert.Equal(t, entity.Male, p.Birth.Gender)

	assert.Equal(t, "庚午", p.Chart.Year.String())
	assert.Equal(t, "丙寅", p.Chart.Month.String())
	assert.Equal(t, "己巳", p.Chart.Day.String())
	assert.Equal(t, "辛未", p.Chart.Hour.String())

	assert.Equal(t, entity.Forward, p.Luck.Direction)
	// 惊蛰（03-06 08:00）まで18時間 = 0.75日 → 3か月
	assert.Equal(t, entity.OnsetAge{Years: 0, Months: 3, Days: 0}, p.Luck.Onset)
	assert.Equal(t,
		[]string{"丁卯", "戊辰", "己巳", "庚午", "辛未", "壬申", "癸酉", "甲戌", "乙亥"},
		pillarLabels(p.Luck.Pillars))
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60, 70, 80}, pillarAges(p.Luck.Pillars))

	// 出生年の前後1年分の節入りを要求する
	assert.Equal(t, 1, repo.SolarTermsCall)
	assert.Equal(t, 1, repo.DayRecordCall)
}

// TestProfileUsecase_ComputeProfile_Female は陽年生まれの女性が逆行になり、支配節（立春）からの経過時間で起運を求めることを検証します。
func TestProfileUsecase_ComputeProfile_Female(t *testing.T) {
	t.Parallel()

	uc := usecase.NewProfileUsecase(newFixtureRepository())

	p, err := uc.ComputeProfile(context.Background(), "1990-03-05 14:00", "女")
	require.NoError(t, err)

	assert.Equal(t, entity.Reverse, p.Luck.Direction)
	// 立春（02-04 14:00）から29日 → 9年と2日 → 9年8か月
	assert.Equal(t, entity.OnsetAge{Years: 9, Months: 8, Days: 0}, p.Luck.Onset)
	assert.Equal(t,
		[]string{"乙丑", "甲子", "癸亥", "壬戌", "辛酉", "庚申", "己未", "戊午", "丁巳"},
		pillarLabels(p.Luck.Pillars))
	assert.Equal(t, []int{9, 19, 29, 39, 49, 59, 69, 79, 89}, pillarAges(p.Luck.Pillars))
}

// TestProfileUsecase_ComputeProfile_YearBoundary は立春の前後で年柱と月柱が切り替わることを検証します。
func TestProfileUsecase_ComputeProfile_YearBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		birthTime string
		wantYear  string
		wantMonth string
	}{
		{"1990-02-04 13:59", "己巳", "乙丑"},
		{"1990-02-04 14:00", "庚午", "丙寅"},
		{"1990-02-04 14:01", "庚午", "丙寅"},
	}

	for _, tt := range tests {
		t.Run(tt.birthTime, func(t *testing.T) {
			t.Parallel()

			uc := usecase.NewProfileUsecase(newFixtureRepository())
			p, err := uc.ComputeProfile(context.Background(), tt.birthTime, "男")
			require.NoError(t, err)

			assert.Equal(t, tt.wantYear, p.Chart.Year.String())
			assert.Equal(t, tt.wantMonth, p.Chart.Month.String())
			assert.Equal(t, "庚子", p.Chart.Day.String())
			assert.Equal(t, "癸未", p.Chart.Hour.String())
		})
	}
}

// TestProfileUsecase_ComputeProfile_Structure は命式の構造（四柱・向き・起運・九歩の大運）が常に揃っていることを検証します。
func TestProfileUsecase_ComputeProfile_Structure(t *testing.T) {
	t.Parallel()

	uc := usecase.NewProfileUsecase(newFixtureRepository())

	for _, gender := range []string{"男", "女"} {
		p, err := uc.ComputeProfile(context.Background(), "1990-03-05 14:00", gender)
		require.NoError(t, err)

		for _, g := range []entity.GanZhi{p.Chart.Year, p.Chart.Month, p.Chart.Day, p.Chart.Hour} {
			assert.True(t, g.Valid())
			assert.Len(t, []rune(g.String()), 2)
		}
		assert.Contains(t, []entity.Direction{entity.Forward, entity.Reverse}, p.Luck.Direction)
		assert.GreaterOrEqual(t, p.Luck.Onset.Years, 0)
		assert.GreaterOrEqual(t, p.Luck.Onset.Months, 0)
		assert.GreaterOrEqual(t, p.Luck.Onset.Days, 0)
		require.Len(t, p.Luck.Pillars, 9)
		for i := 1; i < len(p.Luck.Pillars); i++ {
			assert.Equal(t, 10, p.Luck.Pillars[i].Age-p.Luck.Pillars[i-1].Age)
		}
	}
}

// TestProfileUsecase_ComputeProfile_Errors はエラー分類（入力不正・参照データ欠落・提供元停止）が呼び出し元に伝播することを検証します。
func TestProfileUsecase_ComputeProfile_Errors(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("connection refused")

	tests := []struct {
		name        string
		birthTime   string
		gender      string
		setup       func(m *mockCalendarRepository)
		expectedErr error
		repoCalled  bool
	}{
		{
			name:        "error: timestamp without time component",
			birthTime:   "1990-03-05",
			gender:      "男",
			expectedErr: domain.ErrMalformedInput,
		},
		{
			name:        "error: unknown gender",
			birthTime:   "1990-03-05 14:00",
			gender:      "x",
			expectedErr: domain.ErrMalformedInput,
		},
		{
			name:        "error: date absent from reference data",
			birthTime:   "1990-03-07 14:00",
			gender:      "男",
			expectedErr: domain.ErrReferenceDataMissing,
			repoCalled:  true,
		},
		{
			name:      "error: provider unavailable",
			birthTime: "1990-03-05 14:00",
			gender:    "男",
			setup: func(m *mockCalendarRepository) {
				m.SolarTermsFunc = func(context.Context, int, int) ([]entity.SolarTermEvent, error) {
					return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, errBoom)
				}
			},
			expectedErr: domain.ErrProviderUnavailable,
			repoCalled:  true,
		},
		{
			name:      "error: hour value absent",
			birthTime: "1990-03-05 14:00",
			gender:    "男",
			setup: func(m *mockCalendarRepository) {
				m.DayRecordFunc = func(_ context.Context, date time.Time) (entity.DayRecord, error) {
					rec := dayRecord(at(1990, 3, 5, 0, 0), "己巳")
					rec.Hours[7] = ""
					return rec, nil
				}
			},
			expectedErr: domain.ErrReferenceDataMissing,
			repoCalled:  true,
		},
		{
			name:      "error: no governing solar term",
			birthTime: "1990-03-05 14:00",
			gender:    "男",
			setup: func(m *mockCalendarRepository) {
				m.SolarTermsFunc = func(context.Context, int, int) ([]entity.SolarTermEvent, error) {
					return []entity.SolarTermEvent{{Term: entity.QingMing, Time: at(1990, 4, 5, 3, 13)}}, nil
				}
			},
			expectedErr: domain.ErrReferenceDataMissing,
			repoCalled:  true,
		},
		{
			name:      "error: no solar term after birth for forward direction",
			birthTime: "1990-03-05 14:00",
			gender:    "男",
			setup: func(m *mockCalendarRepository) {
				m.SolarTermsFunc = func(context.Context, int, int) ([]entity.SolarTermEvent, error) {
					return []entity.SolarTermEvent{{Term: entity.LiChun, Time: at(1990, 2, 4, 14, 0)}}, nil
				}
			},
			expectedErr: domain.ErrReferenceDataMissing,
			repoCalled:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFixtureRepository()
			if tt.setup != nil {
				tt.setup(repo)
			}
			uc := usecase.NewProfileUsecase(repo)

			p, err := uc.ComputeProfile(context.Background(), tt.birthTime, tt.gender)

			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
			assert.Equal(t, entity.Profile{}, p, "no partial result on failure")
			if !tt.repoCalled {
				assert.Zero(t, repo.SolarTermsCall+repo.DayRecordCall, "repository must not be called for malformed input")
			}
		})
	}
}
