// Package health reports whether the bot's dependencies are reachable.
package health

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	telebot "gopkg.in/telebot.v3"
)

// DefaultTimeout bounds a single component check.
const DefaultTimeout = 3 * time.Second

// Check probes one component.
type Check func(ctx context.Context) error

// Status of a component or of the whole report.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Component is the outcome of one check.
type Component struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report aggregates every component.
type Report struct {
	Status     Status      `json:"status"`
	Components []Component `json:"components"`
}

// Healthy reports whether every component is up.
func (r Report) Healthy() bool {
	return r.Status == StatusUp
}

// Checker runs the registered checks concurrently.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
	log     *slog.Logger
}

// NewChecker instantiates a Checker with the provided logger.
func NewChecker(log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		checks:  make(map[string]Check),
		timeout: DefaultTimeout,
		log:     log,
	}
}

// Add registers a check by name. A nil check is ignored.
func (c *Checker) Add(name string, check Check) {
	if name == "" || check == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run executes every check and returns the components sorted by name.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	components := make([]Component, 0, len(checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check Check) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)
			component := Component{Name: name, Status: StatusUp, Duration: time.Since(start)}
			if err != nil {
				component.Status = StatusDown
				component.Error = err.Error()
				c.log.WarnContext(ctx, "health check failed", slog.String("component", name), slog.Any("error", err))
			}

			mu.Lock()
			components = append(components, component)
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	report := Report{Status: StatusUp, Components: components}
	for _, component := range components {
		if component.Status == StatusDown {
			report.Status = StatusDown
			break
		}
	}
	return report
}

// Postgres pings the database.
func Postgres(db *sql.DB) Check {
	return func(ctx context.Context) error {
		if db == nil {
			return sql.ErrConnDone
		}
		return db.PingContext(ctx)
	}
}

// Pinger is satisfied by the application's Redis client.
type Pinger interface {
	Healthy(ctx context.Context) error
}

// Redis pings the Redis server.
func Redis(client Pinger) Check {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis client is not configured")
		}
		return client.Healthy(ctx)
	}
}

// Telegram reports whether the bot has authenticated against the Bot API.
func Telegram(bot *telebot.Bot) Check {
	return func(context.Context) error {
		if bot == nil || bot.Me == nil {
			return errors.New("telegram bot is not initialized")
		}
		return nil
	}
}
