package service

import (
	"context"
	"log"
	"time"

	"creatorflow/internal/models"
)

// AsyncNotifier sends access-granted notifications in the background so
// the access transition never waits on the retry loop. A failed delivery
// lands in the delivery log for manual re-triggering; the grant stands
// either way.
type AsyncNotifier struct {
	dispatcher *Dispatcher
	settings   PauseChecker
	appBaseURL string
}

// NewAsyncNotifier creates a new async notifier
func NewAsyncNotifier(dispatcher *Dispatcher, settings PauseChecker, appBaseURL string) *AsyncNotifier {
	return &AsyncNotifier{
		dispatcher: dispatcher,
		settings:   settings,
		appBaseURL: appBaseURL,
	}
}

// NotifyAccessGranted dispatches the access-granted email for a creator
func (n *AsyncNotifier) NotifyAccessGranted(creator *models.Creator, level models.AccessLevel) {
	if n.settings != nil && n.settings.NotificationsPaused() {
		log.Printf("Notifications paused, skipping access-granted email for creator %d", creator.ID)
		return
	}

	msg := ComposeAccessGranted(creator, level, n.appBaseURL)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := n.dispatcher.Send(ctx, msg); err != nil {
			log.Printf("Access-granted notification failed for creator %d: %v", creator.ID, err)
		}
	}()
}
