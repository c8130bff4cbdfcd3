package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/store"
)

// Scheduler periodically scans subscribers' fridges and notifies about
// items expiring within the configured window. Each item is notified at
// most once per calendar day, tracked in the push_sent table, so restarts
// do not re-spam.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	fridges  *store.FridgeStore
	window   time.Duration
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(svc *Service, pushStore *store.PushStore, fridgeStore *store.FridgeStore, window, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		fridges:  fridgeStore,
		window:   window,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	userIDs, err := s.push.ListUserIDs()
	if err != nil {
		s.logger.Error("push scheduler: list subscribers", "error", err)
		return
	}
	for _, uid := range userIDs {
		s.checkExpiring(uid)
	}
}

func (s *Scheduler) checkExpiring(userID int64) {
	now := time.Now().UTC()
	items, err := s.fridges.ListExpiringBefore(userID, now.Add(s.window))
	if err != nil {
		s.logger.Error("push scheduler: list expiring", "error", err, "user_id", userID)
		return
	}
	if len(items) == 0 {
		return
	}

	today := now.Format("2006-01-02")
	var due []model.FridgeItem
	for _, item := range items {
		sent, err := s.push.WasSent(userID, item.ID, today)
		if err != nil {
			s.logger.Error("push scheduler: check sent", "error", err)
			continue
		}
		if !sent {
			due = append(due, item)
		}
	}
	if len(due) == 0 {
		return
	}

	subs, err := s.push.ListByUser(userID)
	if err != nil {
		s.logger.Error("push scheduler: list subscriptions", "error", err)
		return
	}

	for _, item := range due {
		payload := Payload{
			Title: "Expiring soon",
			Body:  expiryBody(&item, now),
			URL:   "/fridge",
			Tag:   fmt.Sprintf("expiry-%d", item.ID),
		}
		for i := range subs {
			if err := s.service.Send(&subs[i], payload); err != nil {
				if errors.Is(err, ErrExpired) {
					if derr := s.push.DeleteByEndpoint(subs[i].Endpoint); derr != nil {
						s.logger.Error("push scheduler: drop expired subscription", "error", derr)
					}
					continue
				}
				s.logger.Error("push scheduler: send", "error", err, "fridge_item", item.ID)
			}
		}
		if err := s.push.MarkSent(userID, item.ID, today); err != nil {
			s.logger.Error("push scheduler: mark sent", "error", err)
		}
	}
}

func expiryBody(item *model.FridgeItem, now time.Time) string {
	if item.ExpirationDate == nil {
		return item.Name
	}
	days := int(item.ExpirationDate.Sub(now).Hours() / 24)
	switch {
	case days < 0:
		return fmt.Sprintf("%s expired", item.Name)
	case days == 0:
		return fmt.Sprintf("%s expires today", item.Name)
	case days == 1:
		return fmt.Sprintf("%s expires tomorrow", item.Name)
	default:
		return fmt.Sprintf("%s expires in %d days", item.Name, days)
	}
}
