package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jobboard-client/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestHealthUsecase(t *testing.T) {
	ctx := context.Background()

	t.Run("Should be ok with no checks", func(t *testing.T) {
		got := usecase.NewHealthUsecase(nil, 0).Check(ctx)
		assert.Equal(t, map[string]string{"status": "ok"}, got)
	})

	t.Run("Should report a failing dependency as degraded", func(t *testing.T) {
		h := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
			"redis":   func(context.Context) error { return errors.New("connection refused") },
			"session": func(context.Context) error { return nil },
		}, time.Second)

		got := h.Check(ctx)
		assert.Equal(t, "degraded", got["status"])
		assert.Equal(t, "ok", got["session"])
		assert.Equal(t, "error: connection refused", got["redis"])
	})

	t.Run("Should bound a slow check", func(t *testing.T) {
		h := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
			"backend": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, 20*time.Millisecond)

		got := h.Check(ctx)
		assert.Equal(t, "degraded", got["status"])
		assert.Contains(t, got["backend"], "deadline")
	})
}
