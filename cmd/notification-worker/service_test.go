package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeConsumer struct {
	runs int
	err  error
}

func (f *fakeConsumer) Run(ctx context.Context) error {
	f.runs++
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunStopsBeforeConsumingWhenDependencyDown(t *testing.T) {
	consumer := &fakeConsumer{}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		DB:       fakePinger{},
		Redis:    fakePinger{err: errors.New("connection refused")},
		PubSub:   fakePinger{},
		Consumer: consumer,
	})
	require.NoError(t, err)

	err = service.Run(context.Background())
	require.ErrorContains(t, err, "redis ping failed")
	require.Zero(t, consumer.runs)
}

func TestRunReturnsOnCancel(t *testing.T) {
	consumer := &fakeConsumer{}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		DB:       fakePinger{},
		Redis:    fakePinger{},
		PubSub:   fakePinger{},
		Consumer: consumer,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, service.Run(ctx), context.Canceled)
	require.Equal(t, 1, consumer.runs)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: logger.Nop(), Consumer: &fakeConsumer{}})
	require.ErrorContains(t, err, "database client is required")
}
