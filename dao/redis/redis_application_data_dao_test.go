package redis

import (
	"context"
	"opening-hours/db"
	"opening-hours/models/openinghours"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisApplicationDataDAO_LoadMissing(t *testing.T) {
	ctx := context.Background()
	dao := NewRedisApplicationDataDAO(db.NewMockRedisClient(ctx))

	data, err := dao.Load(ctx)

	require.NoError(t, err)
	assert.Nil(t, data.OpeningHours)
}

func TestRedisApplicationDataDAO_StoreThenLoad(t *testing.T) {
	ctx := context.Background()
	dao := NewRedisApplicationDataDAO(db.NewMockRedisClient(ctx))
	event := &openinghours.OpeningHoursEvent{
		ID:        "1",
		Namespace: "namespace",
		Type:      openinghours.TYPE_OPENING_HOURS,
		Start:     time.Date(2016, 5, 16, 8, 0, 0, 0, time.UTC),
		End:       time.Date(2016, 5, 16, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, dao.Store(ctx, openinghours.ApplicationData{
		OpeningHours: []*openinghours.OpeningHoursEvent{event},
	}))
	data, err := dao.Load(ctx)

	require.NoError(t, err)
	require.Len(t, data.OpeningHours, 1)
	assert.Equal(t, event, data.OpeningHours[0])
}

func TestRedisApplicationDataDAO_LoadMalformed(t *testing.T) {
	ctx := context.Background()
	client := db.NewMockRedisClient(ctx)
	_ = client.Set(ctx, APPLICATION_DATA_KEY, `{"openingHours": [`)
	dao := NewRedisApplicationDataDAO(client)

	_, err := dao.Load(ctx)

	assert.Error(t, err)
}
