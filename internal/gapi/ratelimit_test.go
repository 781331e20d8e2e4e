package gapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiterKnownServices(t *testing.T) {
	gmail := NewRateLimiter(ServiceGmail)
	sheets := NewRateLimiter(ServiceSheets)

	assert.True(t, gmail.Allow())
	assert.True(t, sheets.Allow())
}

func TestNewRateLimiterUnknownServiceFallsBack(t *testing.T) {
	l := NewRateLimiter(ServiceType("drive"))
	assert.True(t, l.Allow())
}

func TestAllowExhaustsBurst(t *testing.T) {
	l := NewRateLimiter(ServiceSheets)

	burst := DefaultRateLimits[ServiceSheets].BurstSize
	for i := 0; i < burst; i++ {
		assert.True(t, l.Allow(), "request %d within burst", i+1)
	}
	assert.False(t, l.Allow(), "burst exhausted")
}

func TestRecordRateLimitErrorBlocksAllow(t *testing.T) {
	l := NewRateLimiter(ServiceGmail)
	require.True(t, l.Allow())

	l.RecordRateLimitError(30)
	assert.False(t, l.Allow(), "backoff period blocks requests")
}

func TestWaitRespectsContextDuringBackoff(t *testing.T) {
	l := NewRateLimiter(ServiceGmail)
	l.RecordRateLimitError(60)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Wait(ctx)
	assert.Error(t, err, "wait must give up when the context expires")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWaitImmediateWhenTokensAvailable(t *testing.T) {
	l := NewRateLimiter(ServiceGmail)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, l.Wait(ctx))
}
