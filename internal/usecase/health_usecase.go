package usecase

import (
	"context"
	"sync"
	"time"
)

// HealthCheck probes one dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthUsecase runs every check concurrently, each bounded by timeout.
func NewHealthUsecase(checks map[string]HealthCheck, timeout time.Duration) HealthUsecase {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &healthUsecase{checks: checks, timeout: timeout}
}

// Check reports "ok" or "error: <reason>" per dependency, plus an overall "status".
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	result := map[string]string{"status": "ok"}
	for name, check := range u.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := check(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result[name] = "error: " + err.Error()
				result["status"] = "degraded"
				return
			}
			result[name] = "ok"
		}()
	}
	wg.Wait()
	return result
}
