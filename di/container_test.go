package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"opening-hours/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewContainerDevSeedsCalendar(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[
		{"type":"opening hours","recurrence":"weekly","start":"2016-05-16T08:00:00.000Z","end":"2016-05-16T10:00:00.000Z"}
	]`), 0o644))

	cfg := config.DefaultConfig()
	cfg.Calendar.SeedFile = seed

	container, err := NewContainer(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer container.Close()

	events, err := container.OpeningHoursService.GetForCurrentWeek(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, len(container.OverviewService.Overview().Days[0].Slots))
}

func TestNewContainerRejectsUnknownTimezone(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timezone = "Nowhere/Special"

	_, err := NewContainer(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewContainerFailsOnMissingSeedFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Calendar.SeedFile = filepath.Join(t.TempDir(), "absent.json")

	_, err := NewContainer(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
