package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// tokenFailureLimiter throttles clients that keep presenting bad bearer
// tokens. Each client gets a fixed window that opens on its first failure;
// once limit failures land inside it, the client is blocked until it closes.
type tokenFailureLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]tokenFailureWindow
}

type tokenFailureWindow struct {
	opened   time.Time
	failures int
}

func newTokenFailureLimiter(limit int, window time.Duration) *tokenFailureLimiter {
	return &tokenFailureLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]tokenFailureWindow),
	}
}

// blockedFor reports how long the client must wait, or zero when it may try.
func (limiter *tokenFailureLimiter) blockedFor(client string, now time.Time) time.Duration {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	entry, ok := limiter.activeLocked(client, now)
	if !ok || entry.failures < limiter.limit {
		return 0
	}
	return entry.opened.Add(limiter.window).Sub(now)
}

func (limiter *tokenFailureLimiter) recordFailure(client string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	entry, ok := limiter.activeLocked(client, now)
	if !ok {
		entry = tokenFailureWindow{opened: now}
	}
	entry.failures++
	limiter.clients[client] = entry
}

// forgive clears the client after a valid token.
func (limiter *tokenFailureLimiter) forgive(client string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.clients, client)
}

func (limiter *tokenFailureLimiter) trackedClients(now time.Time) int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for client := range limiter.clients {
		limiter.activeLocked(client, now)
	}
	return len(limiter.clients)
}

// activeLocked drops the client's window once it has closed.
func (limiter *tokenFailureLimiter) activeLocked(client string, now time.Time) (tokenFailureWindow, bool) {
	entry, ok := limiter.clients[client]
	if !ok {
		return tokenFailureWindow{}, false
	}
	if !now.Before(entry.opened.Add(limiter.window)) {
		delete(limiter.clients, client)
		return tokenFailureWindow{}, false
	}
	return entry, true
}

func tokenFailureClientKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
