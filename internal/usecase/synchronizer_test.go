package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/usecase"
	"go-jobboard-client/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobKey(j domain.Job) string { return j.ID }

func pageOf(page, total int, jobs ...domain.Job) *domain.Page[domain.Job] {
	return &domain.Page[domain.Job]{Items: jobs, Page: page, TotalPages: total}
}

func staticFetch(p *domain.Page[domain.Job], err error) usecase.Fetcher[domain.Job] {
	return func(context.Context, int) (*domain.Page[domain.Job], error) { return p, err }
}

// blockingFetch waits for release or cancellation before answering.
func blockingFetch(release <-chan struct{}, p *domain.Page[domain.Job]) usecase.Fetcher[domain.Job] {
	return func(ctx context.Context, _ int) (*domain.Page[domain.Job], error) {
		select {
		case <-release:
			return p, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func newJobCollection(opts usecase.CollectionOptions) *usecase.Collection[domain.Job] {
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}
	return usecase.NewCollection("jobs", jobKey, opts)
}

func TestCollection_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Should replace items on success", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A")), nil)))
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("b", "B")), nil)))

		assert.Equal(t, []string{"b"}, ids(c.Items()))
		v := c.Snapshot()
		assert.True(t, v.Loaded)
		assert.Empty(t, v.Error)
	})

	t.Run("Should keep the last good items on failure", func(t *testing.T) {
		notes := &recordingNotifier{}
		c := newJobCollection(usecase.CollectionOptions{Notifier: notes})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A")), nil)))

		err := c.Load(ctx, staticFetch(nil, errors.New("connection refused")))

		assert.ErrorIs(t, err, apperror.ErrFetch)
		assert.Equal(t, []string{"a"}, ids(c.Items()))
		assert.Error(t, c.Err())
		assert.NotEmpty(t, c.Snapshot().Error)
		require.Len(t, notes.All(), 1)
		assert.Equal(t, "jobs", notes.All()[0].Topic)
	})

	t.Run("Should treat malformed payloads as fetch failures", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		err := c.Load(ctx, staticFetch(nil, apperror.Validation("expected a list", nil)))

		assert.ErrorIs(t, err, apperror.ErrFetch)
		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.Empty(t, c.Items())
	})

	t.Run("Should discard a load abandoned before it resolved", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A")), nil)))

		release := make(chan struct{})
		done := make(chan error, 1)
		go func() { done <- c.Load(ctx, blockingFetch(release, pageOf(1, 1, job("stale", "S")))) }()
		assert.Eventually(t, func() bool { return c.Snapshot().Loading }, time.Second, time.Millisecond)

		c.Abandon()
		close(release)

		assert.ErrorIs(t, <-done, usecase.ErrSuperseded)
		assert.Equal(t, []string{"a"}, ids(c.Items()))
		assert.False(t, c.Snapshot().Loading)
	})

	t.Run("Should let the latest load win", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		release := make(chan struct{})
		done := make(chan error, 1)
		go func() { done <- c.Load(ctx, blockingFetch(release, pageOf(1, 1, job("old", "O")))) }()
		assert.Eventually(t, func() bool { return c.Snapshot().Loading }, time.Second, time.Millisecond)

		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("new", "N")), nil)))
		close(release)

		assert.ErrorIs(t, <-done, usecase.ErrSuperseded)
		assert.Equal(t, []string{"new"}, ids(c.Items()))
	})

	t.Run("Should time out a hanging fetch", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{Timeout: 20 * time.Millisecond})
		err := c.Load(ctx, blockingFetch(make(chan struct{}), nil))

		assert.ErrorIs(t, err, apperror.ErrFetch)
		assert.False(t, c.Snapshot().Loading)
	})

	t.Run("Should hand auth expiry to the session instead of notifying", func(t *testing.T) {
		notes := &recordingNotifier{}
		var expired []error
		c := newJobCollection(usecase.CollectionOptions{
			Notifier:      notes,
			OnAuthExpired: func(_ context.Context, err error) bool { expired = append(expired, err); return true },
		})

		err := c.Load(ctx, staticFetch(nil, apperror.AuthExpired("Invalid token")))

		assert.True(t, apperror.IsAuthExpired(err))
		assert.Len(t, expired, 1)
		assert.Empty(t, notes.All())
	})
}

func TestCollection_LoadMore(t *testing.T) {
	ctx := context.Background()

	t.Run("Should append and stop at the last page", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 2, job("a", "A"), job("b", "B")), nil)))
		assert.True(t, c.HasMore())

		var requested []int
		next := func(_ context.Context, page int) (*domain.Page[domain.Job], error) {
			requested = append(requested, page)
			return pageOf(page, 2, job("b", "B"), job("c", "C")), nil
		}
		require.NoError(t, c.LoadMore(ctx, next))
		require.NoError(t, c.LoadMore(ctx, next))

		assert.Equal(t, []int{2}, requested)
		assert.Equal(t, []string{"a", "b", "c"}, ids(c.Items()))
		assert.False(t, c.HasMore())
	})

	t.Run("Should not offer more before a first load", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		assert.False(t, c.HasMore())
		assert.NoError(t, c.LoadMore(ctx, staticFetch(nil, errors.New("unused"))))
	})
}

func present(j domain.Job) usecase.Outcome[domain.Job] {
	return usecase.Outcome[domain.Job]{Value: j, Present: true}
}

func TestCollection_Optimistic(t *testing.T) {
	ctx := context.Background()

	t.Run("Should apply at once and keep the previous snapshot while pending", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "Old title")), nil)))

		release := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- c.Optimistic(ctx, "a", present(job("a", "New title")), func(context.Context) (usecase.Outcome[domain.Job], error) {
				<-release
				return present(job("a", "Server title")), nil
			})
		}()

		assert.Eventually(t, func() bool { return c.State("a").Phase == usecase.PhasePending }, time.Second, time.Millisecond)
		got, _ := c.Find("a")
		assert.Equal(t, "New title", got.Title)
		require.NotNil(t, c.State("a").Previous)
		assert.Equal(t, "Old title", c.State("a").Previous.Title)

		close(release)
		require.NoError(t, <-done)
		got, _ = c.Find("a")
		assert.Equal(t, "Server title", got.Title)
		assert.Equal(t, usecase.PhaseSucceeded, c.State("a").Phase)
	})

	t.Run("Should roll back only the failed target", func(t *testing.T) {
		notes := &recordingNotifier{}
		c := newJobCollection(usecase.CollectionOptions{Notifier: notes})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A")), nil)))
		require.NoError(t, c.Optimistic(ctx, "b", present(job("b", "B")), func(context.Context) (usecase.Outcome[domain.Job], error) {
			return present(job("b", "B")), nil
		}))

		err := c.Optimistic(ctx, "a", usecase.Outcome[domain.Job]{}, func(context.Context) (usecase.Outcome[domain.Job], error) {
			return usecase.Outcome[domain.Job]{}, errors.New("503")
		})

		assert.ErrorIs(t, err, apperror.ErrMutation)
		assert.Equal(t, []string{"a", "b"}, ids(c.Items()))
		st := c.State("a")
		assert.Equal(t, usecase.PhaseFailed, st.Phase)
		require.NotNil(t, st.Previous)
		assert.Equal(t, "a", st.Previous.ID)
		assert.Len(t, notes.All(), 1)
	})

	t.Run("Should overlay a pending change on a fresh load", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		release := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- c.Optimistic(ctx, "x", present(job("x", "X")), func(context.Context) (usecase.Outcome[domain.Job], error) {
				<-release
				return present(job("x", "X")), nil
			})
		}()
		assert.Eventually(t, func() bool { return c.State("x").Phase == usecase.PhasePending }, time.Second, time.Millisecond)

		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A")), nil)))
		assert.ElementsMatch(t, []string{"a", "x"}, ids(c.Items()))

		close(release)
		require.NoError(t, <-done)
	})

	t.Run("Should keep a change confirmed while an older load was in flight", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A"), job("b", "B")), nil)))

		release := make(chan struct{})
		done := make(chan error, 1)
		go func() { done <- c.Load(ctx, blockingFetch(release, pageOf(1, 1, job("a", "A"), job("b", "B")))) }()
		assert.Eventually(t, func() bool { return c.Snapshot().Loading }, time.Second, time.Millisecond)

		require.NoError(t, c.Optimistic(ctx, "x", present(job("x", "X")), func(context.Context) (usecase.Outcome[domain.Job], error) {
			return present(job("x", "X")), nil
		}))
		require.NoError(t, c.Optimistic(ctx, "b", usecase.Outcome[domain.Job]{}, func(context.Context) (usecase.Outcome[domain.Job], error) {
			return usecase.Outcome[domain.Job]{}, nil
		}))
		close(release)

		require.NoError(t, <-done)
		assert.ElementsMatch(t, []string{"a", "x"}, ids(c.Items()))

		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A")), nil)))
		assert.Equal(t, []string{"a"}, ids(c.Items()))
	})

	t.Run("Should drop a pending result after reset", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		release := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- c.Optimistic(ctx, "x", present(job("x", "X")), func(context.Context) (usecase.Outcome[domain.Job], error) {
				<-release
				return present(job("x", "X")), nil
			})
		}()
		assert.Eventually(t, func() bool { return c.State("x").Phase == usecase.PhasePending }, time.Second, time.Millisecond)

		c.Reset()
		close(release)

		assert.ErrorIs(t, <-done, usecase.ErrSuperseded)
		assert.Empty(t, c.Items())
		assert.Equal(t, usecase.PhaseIdle, c.State("x").Phase)
	})
}

func TestCollection_Pessimistic(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject a second call on a pending target", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		release := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Pessimistic(ctx, "create:x", func(context.Context) (domain.Job, error) {
				<-release
				return job("x", "X"), nil
			})
			assert.NoError(t, err)
		}()
		assert.Eventually(t, func() bool { return c.State("create:x").Phase == usecase.PhasePending }, time.Second, time.Millisecond)
		assert.Empty(t, c.Items())

		_, err := c.Pessimistic(ctx, "create:x", func(context.Context) (domain.Job, error) {
			t.Fatal("second call must not reach the backend")
			return domain.Job{}, nil
		})
		assert.ErrorIs(t, err, usecase.ErrMutationInFlight)

		close(release)
		wg.Wait()
		assert.Equal(t, []string{"x"}, ids(c.Items()))
	})

	t.Run("Should leave items untouched on failure", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A")), nil)))
		before := c.Items()

		_, err := c.Pessimistic(ctx, "create:x", func(context.Context) (domain.Job, error) {
			return domain.Job{}, apperror.Mutation("Job closed", nil)
		})

		assert.ErrorIs(t, err, apperror.ErrMutation)
		assert.Equal(t, before, c.Items())
		assert.Equal(t, usecase.PhaseFailed, c.State("create:x").Phase)
	})
	t.Run("Should keep a record confirmed while an older load was in flight", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		release := make(chan struct{})
		done := make(chan error, 1)
		go func() { done <- c.Load(ctx, blockingFetch(release, pageOf(1, 1, job("a", "A")))) }()
		assert.Eventually(t, func() bool { return c.Snapshot().Loading }, time.Second, time.Millisecond)

		_, err := c.Pessimistic(ctx, "create:x", func(context.Context) (domain.Job, error) {
			return job("x", "X"), nil
		})
		require.NoError(t, err)
		close(release)

		require.NoError(t, <-done)
		assert.Equal(t, []string{"x", "a"}, ids(c.Items()))
	})

	t.Run("Should refuse from the check without calling the backend", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A")), nil)))

		var seen []string
		opts := usecase.PessimisticOptions[domain.Job]{
			Check: func(items []domain.Job) error {
				seen = ids(items)
				return apperror.Conflict("Already held")
			},
		}
		_, err := c.PessimisticWith(ctx, "create:a", opts, func(context.Context) (domain.Job, error) {
			t.Fatal("refused call must not reach the backend")
			return domain.Job{}, nil
		})

		assert.ErrorIs(t, err, apperror.ErrMutation)
		assert.Equal(t, []string{"a"}, seen)
		assert.Equal(t, usecase.PhaseIdle, c.State("create:a").Phase)
	})

	t.Run("Should not insert a record the view does not admit", func(t *testing.T) {
		c := newJobCollection(usecase.CollectionOptions{})
		require.NoError(t, c.Load(ctx, staticFetch(pageOf(1, 1, job("a", "A"), job("b", "B")), nil)))
		opts := usecase.PessimisticOptions[domain.Job]{
			Admit: func(j domain.Job) bool { return j.Title != "Hidden" },
		}

		_, err := c.PessimisticWith(ctx, "edit:x", opts, func(context.Context) (domain.Job, error) {
			return job("x", "Hidden"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(c.Items()))

		_, err = c.PessimisticWith(ctx, "edit:b", opts, func(context.Context) (domain.Job, error) {
			return job("b", "Hidden"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(c.Items()))
	})
}
