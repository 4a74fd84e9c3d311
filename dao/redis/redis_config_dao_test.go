package redis

import (
	"context"
	"errors"
	"opening-hours/db"
	"testing"
)

func TestRedisConfigDAO_WriteThenRead(t *testing.T) {
	// Setup
	ctx := context.Background()
	mockClient := db.NewMockRedisClient(ctx)
	dao := NewRedisConfigDAO(mockClient)

	// Act
	if err := dao.Write(ctx, "public", "opening.hours.status", "visible"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	value, err := dao.Read(ctx, "public", "opening.hours.status")

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if value != "visible" {
		t.Errorf("Expected 'visible', got %q", value)
	}

	stored, err := mockClient.Get(ctx, "config_v1:public:opening.hours.status")
	if err != nil || stored != "visible" {
		t.Errorf("Expected value under scoped key, got %q (%v)", stored, err)
	}
}

func TestRedisConfigDAO_ReadMissing(t *testing.T) {
	ctx := context.Background()
	dao := NewRedisConfigDAO(db.NewMockRedisClient(ctx))

	_, err := dao.Read(ctx, "public", "opening.hours.status")

	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestRedisConfigDAO_WriteFailure(t *testing.T) {
	ctx := context.Background()
	mockClient := db.NewMockRedisClient(ctx)
	mockClient.SetErr = errors.New("connection refused")
	dao := NewRedisConfigDAO(mockClient)

	err := dao.Write(ctx, "public", "opening.hours.status", "hidden")

	if err == nil {
		t.Fatal("Expected an error, got nil")
	}
}
