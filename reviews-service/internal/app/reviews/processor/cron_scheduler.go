package processor

import (
	"context"
	"sync"
	"time"

	"storereviews/pkg/logger"
	"storereviews/reviews-service/internal/app/reviews/service"

	"github.com/robfig/cron/v3"
)

// RatingReconciler - сверка агрегатов рейтинга магазинов
type RatingReconciler interface {
	ReconcileAll(ctx context.Context) (*service.ReconcileResult, error)
}

// cronLogger передает сообщения cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

type CronScheduler struct {
	cron       *cron.Cron
	reconciler RatingReconciler
	initial    sync.WaitGroup // первый проход, запущенный из Start
}

func NewCronScheduler(reconciler RatingReconciler) *CronScheduler {
	log := cronLogger{}
	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	return &CronScheduler{
		cron:       c,
		reconciler: reconciler,
	}
}

// Start регистрирует сверку по расписанию и запускает первый проход в фоне,
// не задерживая старт HTTP-сервера
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting rating reconciliation scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.reconcile(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.reconcile(ctx)
	}()

	return nil
}

func (s *CronScheduler) reconcile(ctx context.Context) {
	start := time.Now()

	result, err := s.reconciler.ReconcileAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Rating reconciliation failed")
		return
	}

	logger.Info().
		Int("checked", result.Checked).
		Int("corrected", result.Corrected).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("Rating reconciliation completed")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping rating reconciliation scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.initial.Wait()
	logger.Info().Msg("Rating reconciliation scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
