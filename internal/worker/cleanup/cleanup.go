// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// expires_atを過ぎたセッション行を定期バッチで削除する。削除は冪等で、
// 対象がない実行もエラーにならない。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger は期限切れセッションの削除を抽象化するインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// MetricsRecorder はクリーンアップ結果のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordSessionsPurged(count int64)
}

// Job は期限切れセッションの自動削除ジョブ。
type Job struct {
	sessions SessionPurger
	metrics  MetricsRecorder
	logger   *slog.Logger
}

// NewJob は新しいJobを生成する。
func NewJob(sessions SessionPurger, metrics MetricsRecorder, logger *slog.Logger) *Job {
	return &Job{
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run は期限切れセッションを1回削除する。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	purged, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsPurged(purged)
	}

	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("purged_count", purged),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// RunPeriodic は指定間隔でRunを繰り返す。コンテキストのキャンセルで停止する。
// 個々の実行の失敗はログに残して継続し、ループ自体は止めない。
func (j *Job) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("セッションクリーンアップループを開始します",
		slog.String("interval", interval.String()),
	)

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("セッションクリーンアップに失敗しました",
					slog.String("error", err.Error()),
				)
			}
		case <-ctx.Done():
			j.logger.Info("セッションクリーンアップループを停止します")
			return
		}
	}
}
