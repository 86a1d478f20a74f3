package utils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockSource stands in for the method whose result gets memoized.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) AMethod(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestMemo_CallsUnderlyingOnce(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	src.On("AMethod", ctx).Return(42, nil).Once()

	memo := NewMemo(src.AMethod)

	first, err := memo.Get(ctx)
	require.NoError(t, err)
	second, err := memo.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 42, first)
	assert.Equal(t, 42, second)
	src.AssertNumberOfCalls(t, "AMethod", 1)
	src.AssertExpectations(t)
}

func TestMemo_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	src.On("AMethod", ctx).Return(0, errors.New("boom")).Once()
	src.On("AMethod", ctx).Return(7, nil).Once()

	memo := NewMemo(src.AMethod)

	_, err := memo.Get(ctx)
	require.Error(t, err)
	assert.False(t, memo.Cached())

	v, err := memo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.True(t, memo.Cached())

	v, err = memo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	src.AssertNumberOfCalls(t, "AMethod", 2)
}

func TestMemo_Reset(t *testing.T) {
	var calls int
	memo := NewMemo(func(context.Context) (int, error) {
		calls++
		return calls, nil
	})

	v, _ := memo.Get(context.Background())
	assert.Equal(t, 1, v)

	memo.Reset()
	assert.False(t, memo.Cached())

	v, _ = memo.Get(context.Background())
	assert.Equal(t, 2, v)
}

func TestMemo_ConcurrentGet(t *testing.T) {
	var calls atomic.Int32
	memo := NewMemo(func(context.Context) (string, error) {
		calls.Add(1)
		return "value", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := memo.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "value", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestMemo_CancelledContext(t *testing.T) {
	src := &mockSource{}
	memo := NewMemo(src.AMethod)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := memo.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	src.AssertNotCalled(t, "AMethod", mock.Anything)
}

func TestMemo_WaiterStopsOnItsOwnContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	memo := NewMemo(func(context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})

	leaderDone := make(chan int)
	go func() {
		v, _ := memo.Get(context.Background())
		leaderDone <- v
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := memo.Get(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	assert.Equal(t, 1, <-leaderDone)
	assert.True(t, memo.Cached())
}

func TestMemo_WaiterRecomputesWhenLeaderCancelled(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	memo := NewMemo(func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			started <- struct{}{}
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "fresh", nil
	})

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error)
	go func() {
		_, err := memo.Get(leaderCtx)
		leaderErr <- err
	}()
	<-started

	waiterDone := make(chan string)
	go func() {
		v, err := memo.Get(context.Background())
		assert.NoError(t, err)
		waiterDone <- v
	}()

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)
	assert.Equal(t, "fresh", <-waiterDone)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemo_WaiterSharesLeaderError(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	memo := NewMemo(func(context.Context) (int, error) {
		calls.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return 0, errors.New("boom")
	})

	leaderErr := make(chan error)
	go func() {
		_, err := memo.Get(context.Background())
		leaderErr <- err
	}()
	<-started

	waiterErr := make(chan error)
	go func() {
		_, err := memo.Get(context.Background())
		waiterErr <- err
	}()

	// Give the waiter time to block on the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)

	assert.EqualError(t, <-leaderErr, "boom")
	assert.EqualError(t, <-waiterErr, "boom")
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, memo.Cached())
}
