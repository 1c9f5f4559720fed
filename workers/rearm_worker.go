package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"safetrip/interfaces"
	"safetrip/services"
)

// RearmWorker restores in-memory scheduling state after a restart: it
// re-arms auto check-in timers for every scheduled user and rehydrates
// any active SOS session from the alert store.
type RearmWorker struct {
	settingsStore interfaces.SettingsStore
	checkIns      *services.CheckInService
	sos           *services.SOSService

	once sync.Once
	wg   sync.WaitGroup
}

func NewRearmWorker(settingsStore interfaces.SettingsStore, checkIns *services.CheckInService, sos *services.SOSService) *RearmWorker {
	return &RearmWorker{
		settingsStore: settingsStore,
		checkIns:      checkIns,
		sos:           sos,
	}
}

// Start runs the re-arm pass once in the background.
func (rw *RearmWorker) Start() {
	rw.once.Do(func() {
		rw.wg.Add(1)
		go rw.run()
	})
}

// Wait blocks until the re-arm pass completes.
func (rw *RearmWorker) Wait() {
	rw.wg.Wait()
}

func (rw *RearmWorker) run() {
	defer rw.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	scheduled, err := rw.settingsStore.ListAutoCheckInUsers(ctx)
	if err != nil {
		logrus.Error("Rearm worker: failed to list scheduled users: ", err)
		return
	}

	rearmed := 0
	for _, settings := range scheduled {
		userID := settings.UserID.Hex()

		if err := rw.checkIns.RearmFromStore(ctx, userID); err != nil {
			logrus.WithField("userId", userID).Warn("Rearm worker: check-in rearm failed: ", err)
			continue
		}
		if err := rw.sos.Rehydrate(ctx, userID); err != nil {
			logrus.WithField("userId", userID).Warn("Rearm worker: SOS rehydrate failed: ", err)
		}
		rearmed++
	}

	logrus.Infof("Rearm worker: restored scheduling state for %d users", rearmed)
}
