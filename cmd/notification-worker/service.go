package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

type consumer interface {
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Logger   *logger.Logger
	DB       pinger
	Redis    pinger
	PubSub   pinger
	Consumer consumer
}

// Service checks the worker's dependencies, then blocks on the consumer.
type Service struct {
	logg     *logger.Logger
	deps     []dependency
	consumer consumer
}

type dependency struct {
	name string
	ping func(context.Context) error
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Consumer == nil {
		return nil, errors.New("notification consumer is required")
	}
	s := &Service{logg: params.Logger, consumer: params.Consumer}
	for _, dep := range []struct {
		name string
		p    pinger
	}{{"database", params.DB}, {"redis", params.Redis}, {"pubsub", params.PubSub}} {
		if dep.p == nil {
			return nil, fmt.Errorf("%s client is required", dep.name)
		}
		s.deps = append(s.deps, dependency{name: dep.name, ping: dep.p.Ping})
	}
	return s, nil
}

func (s *Service) Run(ctx context.Context) error {
	for _, dep := range s.deps {
		if err := dep.ping(ctx); err != nil {
			s.logg.Error(ctx, dep.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}
	s.logg.Info(ctx, "all worker dependencies are ready")

	err := s.consumer.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logg.Error(ctx, "notification consumer stopped unexpectedly", err)
		return err
	}
	return ctx.Err()
}
