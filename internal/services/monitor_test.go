package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

func TestMonitor_CheckAll(t *testing.T) {
	ctx := context.Background()
	provider := &MockProvider{}
	provider.On("Generate", mock.Anything, promptFor("Milano - Torino")).Return(&search.Answer{Text: delayedAnswer}, nil)
	provider.On("Generate", mock.Anything, promptFor("Linea M2")).Return(&search.Answer{Text: regularAnswer}, nil)
	provider.On("Generate", mock.Anything, promptFor("Fiumicino")).Return(nil, search.ErrUpstream)

	svc, st := newTestService(t, provider)
	for _, q := range []string{"Milano - Torino", "Linea M2", "Fiumicino"} {
		_, _, err := st.Toggle(ctx, q, telemetry.ALL)
		require.NoError(t, err)
	}

	m := NewMonitorService(svc, time.Hour)
	assert.Equal(t, 1, m.CheckAll(ctx))

	found, err := st.Find(ctx, "Milano - Torino", telemetry.ALL)
	require.NoError(t, err)
	assert.True(t, found.LastKnownDelay)

	found, err = st.Find(ctx, "Linea M2", telemetry.ALL)
	require.NoError(t, err)
	assert.False(t, found.LastKnownDelay)

	assert.Empty(t, svc.Recent())
}

func TestMonitor_StartStop(t *testing.T) {
	ctx := context.Background()
	provider := &MockProvider{}
	provider.On("Generate", mock.Anything, mock.Anything).Return(&search.Answer{Text: delayedAnswer}, nil)

	svc, st := newTestService(t, provider)
	saved, _, err := st.Toggle(ctx, "A1", telemetry.ROAD)
	require.NoError(t, err)

	m := NewMonitorService(svc, 20*time.Millisecond)
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Start(ctx))
	assert.True(t, m.IsRunning())

	assert.Eventually(t, func() bool {
		got, err := st.Get(ctx, saved.ID)
		return err == nil && got.LastKnownDelay
	}, time.Second, 10*time.Millisecond)

	m.Stop()
	m.Stop()
	assert.False(t, m.IsRunning())
}

func TestMonitor_StopsWithContext(t *testing.T) {
	provider := &MockProvider{}
	svc := NewTransitService(provider, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m := NewMonitorService(svc, time.Hour)
	require.NoError(t, m.Start(ctx))
	cancel()

	// the loop exits on its own; Stop still flips the flag
	m.Stop()
	assert.False(t, m.IsRunning())
}
