package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/config"
	"storefront-backend/internal/shared"
	"storefront-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterPaymentJobs() error {
	return s.registerReconcilePendingPaymentsJob()
}

// ================================================
// Reconcile pending VNPay orders (default every 5 minutes)
// ================================================
// IPN có thể không tới (network, merchant down). Job này hỏi lại VNPay bằng
// querydr và huỷ order quá hạn.
func (s *Scheduler) registerReconcilePendingPaymentsJob() error {
	payload, err := json.Marshal(shared.ReconcilePendingPayload{
		Limit: s.jobConfig.ReconcileLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeReconcilePendingPayments, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.ReconcileCron,
		task,
		asynq.Queue(shared.QueueCritical),
		asynq.MaxRetry(1),
		asynq.Timeout(4*time.Minute),
		// Tránh 2 lần chạy chồng nhau khi lần trước còn chạy
		asynq.Unique(4*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register ReconcilePendingPayments job", err)
		return err
	}

	logger.Info("✓ Registered ReconcilePendingPayments", map[string]interface{}{
		"cron":  s.jobConfig.ReconcileCron,
		"limit": s.jobConfig.ReconcileLimit,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
