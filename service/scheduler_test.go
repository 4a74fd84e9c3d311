package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCronScheduler_ImmediateRun(t *testing.T) {
	s := NewCronScheduler(zap.NewNop())
	defer s.Stop()
	var runs int32

	stop := s.ForPeriod(func() { atomic.AddInt32(&runs, 1) }, time.Hour, true)
	defer stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestCronScheduler_RunsPeriodically(t *testing.T) {
	s := NewCronScheduler(zap.NewNop())
	defer s.Stop()
	var runs int32

	stop := s.ForPeriod(func() { atomic.AddInt32(&runs, 1) }, time.Second, false)

	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, 3*time.Second, 10*time.Millisecond)

	stop()
	stop()
	after := atomic.LoadInt32(&runs)
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&runs))
}
