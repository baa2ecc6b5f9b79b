package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestRedisLockIsPerJob(t *testing.T) {
	store := &memoryStore{values: map[string]string{}}
	first, err := NewRedisLock(store, "ld:lock:cron", 0)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, _ := NewRedisLock(store, "ld:lock:cron", 0)
	ctx := context.Background()

	if ok, _ := first.Acquire(ctx, "sweep"); !ok {
		t.Fatal("expected first acquire")
	}
	if ok, _ := second.Acquire(ctx, "sweep"); ok {
		t.Fatal("expected second instance to be locked out")
	}
	if ok, _ := second.Acquire(ctx, "accrual"); !ok {
		t.Fatal("expected other job to be free")
	}
	if err := second.Release(ctx, "sweep"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok := store.values["ld:lock:cron:sweep"]; !ok {
		t.Fatal("non-owner release must keep the lock")
	}
	if err := first.Release(ctx, "sweep"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok := store.values["ld:lock:cron:sweep"]; ok {
		t.Fatal("owner release must delete the lock")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "x", 0); err == nil {
		t.Fatal("expected nil client error")
	}
	if _, err := NewRedisLock(&memoryStore{}, "", 0); err == nil {
		t.Fatal("expected prefix error")
	}
}
