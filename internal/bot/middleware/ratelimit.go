package middleware

import (
	"sync"
	"time"
)

// cleanupInterval — как часто чистятся записи ушедших пользователей.
const cleanupInterval = 5 * time.Minute

// RateLimiter ограничивает частоту команд на игрока: не больше limit
// сообщений за скользящее окно window. Окно скользящее, а не дискретное,
// чтобы нельзя было отправить 2×limit команд на границе интервала.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[int64][]time.Time
	limit  int
	window time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		hits:   make(map[int64][]time.Time),
		limit:  limit,
		window: window,
		stopCh: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Close останавливает фоновую горутину очистки.
// Его надо вызывать на shutdown (иначе cleanup будет жить вечно).
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow проверяет, может ли игрок выполнить ещё одну команду.
// Если лимит исчерпан, вторым значением возвращается, через сколько
// освободится слот — это время уходит игроку в сообщение о троттлинге.
func (rl *RateLimiter) Allow(userID int64) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := trimOld(rl.hits[userID], now.Add(-rl.window))

	if len(recent) >= rl.limit {
		rl.hits[userID] = recent
		// Слот освободится, когда самый старый хит выйдет из окна
		return false, recent[0].Add(rl.window).Sub(now)
	}

	rl.hits[userID] = append(recent, now)
	return true, 0
}

// trimOld отбрасывает хиты старше cutoff. Хиты упорядочены по времени,
// поэтому достаточно найти первый живой и срезать префикс.
func trimOld(times []time.Time, cutoff time.Time) []time.Time {
	for i, t := range times {
		if t.After(cutoff) {
			return times[i:]
		}
	}
	return nil
}

// cleanupLoop периодически выкидывает записи неактивных игроков,
// чтобы карта не росла бесконечно.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for userID, times := range rl.hits {
				if recent := trimOld(times, cutoff); len(recent) == 0 {
					delete(rl.hits, userID)
				} else {
					rl.hits[userID] = recent
				}
			}
			rl.mu.Unlock()
		}
	}
}
