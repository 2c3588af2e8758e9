package processor

import (
	"context"

	"storefront/catalog-service/internal/app/catalog/service"
	"storefront/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AuditScheduler запускает аудит цен по расписанию cron
type AuditScheduler struct {
	cron    *cron.Cron
	auditor service.PricingAuditorInterface
}

func NewAuditScheduler(auditor service.PricingAuditorInterface) *AuditScheduler {
	c := cron.New(cron.WithLogger(cronLogger{}))

	return &AuditScheduler{
		cron:    c,
		auditor: auditor,
	}
}

// Start регистрирует задачу и сразу выполняет первый аудит.
// Ошибка возвращается только для некорректного расписания.
func (s *AuditScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting pricing audit scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.run(ctx, "scheduled")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.run(ctx, "initial")

	return nil
}

func (s *AuditScheduler) run(ctx context.Context, trigger string) {
	if _, err := s.auditor.RunAudit(ctx); err != nil {
		logger.Error().Err(err).Str("trigger", trigger).Msg("Pricing audit failed")
	}
}

func (s *AuditScheduler) Stop() {
	logger.Info().Msg("Stopping pricing audit scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Pricing audit scheduler stopped")
}

func (s *AuditScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger направляет внутренние сообщения cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
