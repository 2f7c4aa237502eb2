package cache_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCommands is a testify mock for the low-level cache surface.
type MockCommands struct {
	mock.Mock
}

func (m *MockCommands) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCommands) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCommands) AddToSortedSet(ctx context.Context, setKey, member string, score float64) error {
	args := m.Called(ctx, setKey, member, score)
	return args.Error(0)
}

func (m *MockCommands) TrimSortedSet(ctx context.Context, setKey string, keepTopN int64) error {
	args := m.Called(ctx, setKey, keepTopN)
	return args.Error(0)
}

func (m *MockCommands) RangeSortedSetDescending(ctx context.Context, setKey string, limit int64) ([]string, error) {
	args := m.Called(ctx, setKey, limit)
	var members []string
	if args.Get(0) != nil {
		members = args.Get(0).([]string)
	}
	return members, args.Error(1)
}

func (m *MockCommands) RemoveFromSortedSet(ctx context.Context, setKey string, members []string) error {
	args := m.Called(ctx, setKey, members)
	return args.Error(0)
}

func (m *MockCommands) Cardinality(ctx context.Context, setKey string) (int64, error) {
	args := m.Called(ctx, setKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommands) Expire(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}
