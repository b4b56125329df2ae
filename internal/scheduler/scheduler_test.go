package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBookingSpec(t *testing.T) {
	assert.Equal(t, "0,15,30,45 * * * *", bookingSpec(0))
	assert.Equal(t, "0,15,30,45 * * * *", bookingSpec(-3))
	assert.Equal(t, "@every 7m", bookingSpec(7))
}

func TestAnonSpec(t *testing.T) {
	assert.Equal(t, "5 0 * * *", anonSpec(0))
	assert.Equal(t, "@every 2m", anonSpec(2))
}

func TestStart_SecondStartIsNoop(t *testing.T) {
	var runs atomic.Int64
	jobs := Jobs{
		BookingStatuses: func(ctx context.Context) (int64, error) {
			runs.Add(1)
			return 0, nil
		},
		AnonymiseReports: func(ctx context.Context) (int64, error) { return 0, nil },
	}

	s := New(zap.NewNop(), jobs, 0, 0)
	defer s.Stop()

	s.Start()
	entries := s.entryCount()
	assert.Equal(t, 2, entries)

	s.Start()
	assert.Equal(t, entries, s.entryCount(), "second start must not register duplicate jobs")
}

func TestStart_KicksOffBookingJobImmediately(t *testing.T) {
	var runs atomic.Int64
	jobs := Jobs{
		BookingStatuses: func(ctx context.Context) (int64, error) {
			runs.Add(1)
			return 0, nil
		},
	}

	s := New(zap.NewNop(), jobs, 0, 0)
	defer s.Stop()
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, runs.Load(), int64(1), "kickoff run should fire without waiting for the cron slot")
}

func TestRun_FailureStaysInsideResult(t *testing.T) {
	s := New(zap.NewNop(), Jobs{}, 0, 0)

	res := s.run(func(ctx context.Context) (int64, error) {
		return 0, assert.AnError
	})
	assert.Error(t, res.Err)

	// A nil job is a no-op, not a crash.
	res = s.run(nil)
	assert.NoError(t, res.Err)
}
