// Package handler はbaziフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"bazi_backend/internal/feature/bazi/domain"
	"bazi_backend/internal/feature/bazi/domain/entity"
	"bazi_backend/internal/feature/bazi/transport/http/dto"
)

// ProfileUsecase は命式計算のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ProfileUsecase interface {
	ComputeProfile(ctx context.Context, birthTime, gender string) (entity.Profile, error)
}

// BaziHandler は命式計算のHTTPリクエストを処理します。
type BaziHandler struct {
	uc ProfileUsecase
}

// NewBaziHandler は指定されたusecaseでBaziHandlerの新しいインスタンスを生成します。
func NewBaziHandler(uc ProfileUsecase) *BaziHandler {
	return &BaziHandler{uc: uc}
}

// Compute は出生日時と性別を受け取り、四柱と大運をJSONで返します。
//
// エンドポイント例:
// POST /bazi {"birth_time":"1990-03-05 14:00","gender":"男"}
//
//   - リクエストが不正: 400
//   - 参照データに該当日がない: 404
//   - 参照データが未ロード・DB停止: 503
func (h *BaziHandler) Compute(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("bazi request validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "请求体必须是JSON，且包含 'birth_time'（YYYY-MM-DD HH:MM）和 'gender'（男/女）字段。",
		})
		return
	}

	profile, err := h.uc.ComputeProfile(c.Request.Context(), req.BirthTime, req.Gender)
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			slog.Error("bazi computation failed", "error", err, "birth_time", req.BirthTime)
			msg = "internal server error"
		} else {
			slog.Warn("bazi computation rejected", "error", err, "status", status, "birth_time", req.BirthTime)
		}
		c.JSON(status, dto.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, toResponse(profile))
}

// statusFor はドメインエラーをHTTPステータスに変換します。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReferenceDataMissing):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func toResponse(p entity.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		Birth: dto.BirthResponse{
			SolarDatetime: p.Birth.Time.Format(entity.BirthTimeLayout),
			Gender:        p.Birth.Gender.String(),
		},
		Chart: dto.ChartResponse{
			Year:  p.Chart.Year.String(),
			Month: p.Chart.Month.String(),
			Day:   p.Chart.Day.String(),
			Hour:  p.Chart.Hour.String(),
		},
		Luck: dto.LuckResponse{
			Direction:      p.Luck.Direction.String(),
			DirectionLabel: p.Luck.Direction.Label(),
			Onset: dto.OnsetResponse{
				Years:  p.Luck.Onset.Years,
				Months: p.Luck.Onset.Months,
				Days:   p.Luck.Onset.Days,
			},
			OnsetLabel: p.Luck.Onset.Label(),
			Pillars: lo.Map(p.Luck.Pillars, func(lp entity.LuckPillar, _ int) dto.LuckPillarResponse {
				return dto.LuckPillarResponse{Step: lp.Step, Age: lp.Age, Pillar: lp.Pillar.String()}
			}),
		},
	}
}
