// Package scheduler contém os jobs agendados da aplicação
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/fba-portfolio-api/internal/config"
)

//go:generate mockgen -source=retention.go -destination=mocks/mock_retention.go -package=mocks

// ExpiredPurger remove as análises criadas antes de uma data
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type RetentionConfig struct {
	CronSchedule  string
	RetentionDays int
	Enabled       bool
}

// RetentionService apaga periodicamente as análises mais antigas que RetentionDays
type RetentionService struct {
	scheduler            *gocron.Scheduler
	purger               ExpiredPurger
	config               RetentionConfig
	now                  func() time.Time
	baseCtx              context.Context
	purgeRunning         bool
	purgeMutex           sync.Mutex
	lastPurgeStartedAt   time.Time
	lastPurgeCompletedAt time.Time
	lastPurgeDeleted     int64
}

func NewRetentionService(purger ExpiredPurger, cfg *config.Config) *RetentionService {
	retentionConfig := RetentionConfig{
		CronSchedule:  cfg.Retention.CronSchedule, // Default: 3h da manhã todos os dias
		RetentionDays: cfg.Retention.Days,         // Default: 30 dias
		Enabled:       cfg.Retention.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  retentionConfig.CronSchedule,
		"retention_days": retentionConfig.RetentionDays,
	}).Info("Configuração do agendador de retenção carregada")

	return &RetentionService{
		scheduler: gocron.NewScheduler(time.Local),
		purger:    purger,
		config:    retentionConfig,
		now:       time.Now,
		baseCtx:   context.Background(),
	}
}

func (s *RetentionService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Cron de retenção de análises desabilitada por configuração")
		return nil
	}

	s.purgeMutex.Lock()
	s.baseCtx = ctx
	s.purgeMutex.Unlock()

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando cron de retenção de análises")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if _, err := s.PurgeExpiredRuns(ctx); err != nil {
			logrus.WithError(err).Error("Erro na remoção de análises expiradas")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar retenção de análises: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando cron de retenção de análises")
		s.scheduler.Stop()
	}()

	return nil
}

// Cutoff retorna o instante antes do qual as análises expiram
func (s *RetentionService) Cutoff() time.Time {
	return s.now().AddDate(0, 0, -s.config.RetentionDays)
}

// PurgeExpiredRuns executa uma remoção; ignora a chamada se outra já estiver em andamento
func (s *RetentionService) PurgeExpiredRuns(ctx context.Context) (int64, error) {
	s.purgeMutex.Lock()
	if s.purgeRunning {
		s.purgeMutex.Unlock()
		logrus.Warn("Remoção de análises expiradas já está em execução")
		return 0, nil
	}
	s.purgeRunning = true
	s.lastPurgeStartedAt = s.now()
	s.purgeMutex.Unlock()

	cutoff := s.Cutoff()
	deleted, err := s.purger.PurgeExpired(ctx, cutoff)

	s.purgeMutex.Lock()
	s.purgeRunning = false
	s.lastPurgeCompletedAt = s.now()
	if err == nil {
		s.lastPurgeDeleted = deleted
	}
	s.purgeMutex.Unlock()

	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"cutoff":  cutoff.Format(time.RFC3339),
		"deleted": deleted,
	}).Info("Remoção de análises expiradas concluída")

	return deleted, nil
}

// TriggerManualRun dispara a remoção em background
func (s *RetentionService) TriggerManualRun() {
	s.purgeMutex.Lock()
	running := s.purgeRunning
	ctx := s.baseCtx
	s.purgeMutex.Unlock()

	if running {
		logrus.Info("Remoção de análises já em andamento, ignorando solicitação manual")
		return
	}

	logrus.Info("Iniciando remoção manual de análises expiradas")
	go func() {
		if _, err := s.PurgeExpiredRuns(ctx); err != nil {
			logrus.WithError(err).Error("Erro na remoção manual de análises expiradas")
		}
	}()
}

// GetStatus retorna o status atual do agendador
func (s *RetentionService) GetStatus() map[string]any {
	s.purgeMutex.Lock()
	defer s.purgeMutex.Unlock()

	return map[string]any{
		"enabled":                 s.config.Enabled,
		"cron":                    s.config.CronSchedule,
		"retention_days":          s.config.RetentionDays,
		"running":                 s.purgeRunning,
		"last_purge_started_at":   s.lastPurgeStartedAt,
		"last_purge_completed_at": s.lastPurgeCompletedAt,
		"last_purge_deleted":      s.lastPurgeDeleted,
	}
}
