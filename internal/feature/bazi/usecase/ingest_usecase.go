package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"bazi_backend/internal/feature/bazi/domain/entity"
)

const (
	defaultIngestBatchSize = 500 // 1回のUPSERTで書き込む行数
)

// CalendarSource は参照テーブルの読み込み元（CSVファイルなど）を抽象化します。
type CalendarSource interface {
	ReadCalendar(ctx context.Context) ([]entity.CalendarDay, error)
}

// CalendarWriter は参照テーブルの書き込み先を抽象化します。
type CalendarWriter interface {
	UpsertBatch(ctx context.Context, days []entity.CalendarDay) error
}

// IngestResult は取込結果の件数です。
type IngestResult struct {
	Read    int
	Written int
	Skipped int
}

// IngestUsecase は参照テーブルを読み込み、データベースに永続化するユースケースです。
type IngestUsecase struct {
	source    CalendarSource
	writer    CalendarWriter
	batchSize int
}

// NewIngestUsecase は新しい IngestUsecase を作成します。batchSize が0以下の場合は500件です。
func NewIngestUsecase(source CalendarSource, writer CalendarWriter, batchSize int) *IngestUsecase {
	if batchSize <= 0 {
		batchSize = defaultIngestBatchSize
	}
	return &IngestUsecase{source: source, writer: writer, batchSize: batchSize}
}

// Ingest は全行を読み込み、日柱が不正な行を除いてバッチ単位で書き込みます。
// 書き込みに失敗した時点で処理を中断します（同じ日付はUPSERTされるので再実行できます）。
func (iu *IngestUsecase) Ingest(ctx context.Context) (IngestResult, error) {
	days, err := iu.source.ReadCalendar(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read calendar source: %w", err)
	}

	res := IngestResult{Read: len(days)}
	valid := make([]entity.CalendarDay, 0, len(days))
	for _, d := range days {
		if _, err := entity.ParseGanZhi(d.DayPillar); err != nil {
			// 1行が不正でも取込は止めずにログに出力し、次の行へ進む
			slog.Warn("skipping calendar row", "date", entity.DateKey(d.Time), "error", err)
			res.Skipped++
			continue
		}
		valid = append(valid, d)
	}

	for start := 0; start < len(valid); start += iu.batchSize {
		end := min(start+iu.batchSize, len(valid))
		if err := iu.writer.UpsertBatch(ctx, valid[start:end]); err != nil {
			return res, fmt.Errorf("upsert rows %d-%d: %w", start, end, err)
		}
		res.Written += end - start
	}

	slog.Info("calendar ingest finished", "read", res.Read, "written", res.Written, "skipped", res.Skipped)
	return res, nil
}
