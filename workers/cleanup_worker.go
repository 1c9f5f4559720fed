package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"safetrip/services"
)

// CleanupWorker periodically removes notifications older than the
// retention window. SOS alerts and check-ins are kept forever.
type CleanupWorker struct {
	notifications *services.NotificationService
	config        CleanupWorkerConfig

	isRunning bool
	mutex     sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type CleanupWorkerConfig struct {
	NotificationRetentionDays int
	Interval                  time.Duration
}

func NewCleanupWorker(notifications *services.NotificationService, config CleanupWorkerConfig) *CleanupWorker {
	if config.NotificationRetentionDays <= 0 {
		config.NotificationRetentionDays = 30
	}
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &CleanupWorker{
		notifications: notifications,
		config:        config,
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (cw *CleanupWorker) Start() {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	if cw.isRunning {
		return
	}
	cw.isRunning = true

	cw.wg.Add(1)
	go cw.run()

	logrus.Infof("Cleanup worker started (retention %d days, interval %s)",
		cw.config.NotificationRetentionDays, cw.config.Interval)
}

func (cw *CleanupWorker) Stop() {
	cw.mutex.Lock()
	if !cw.isRunning {
		cw.mutex.Unlock()
		return
	}
	cw.isRunning = false
	cw.mutex.Unlock()

	cw.cancel()
	cw.wg.Wait()
	logrus.Info("Cleanup worker stopped")
}

func (cw *CleanupWorker) run() {
	defer cw.wg.Done()

	ticker := time.NewTicker(cw.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-cw.ctx.Done():
			return
		case <-ticker.C:
			cw.runCleanup()
		}
	}
}

func (cw *CleanupWorker) runCleanup() {
	ctx, cancel := context.WithTimeout(cw.ctx, 5*time.Minute)
	defer cancel()

	if err := cw.notifications.CleanupOld(ctx, cw.config.NotificationRetentionDays); err != nil {
		logrus.Error("Notification cleanup failed: ", err)
	}
}
