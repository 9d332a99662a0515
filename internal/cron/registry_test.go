package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string                     { return s.name }
func (s *stubJob) Run(context.Context) (int, error) { return 0, nil }

func TestRegistryKeepsOrderAndSkipsDuplicates(t *testing.T) {
	jobA := &stubJob{name: "group-order-expiry"}
	jobB := &stubJob{name: "inventory-low-stock"}
	registry := NewRegistry(jobA, nil, jobB)

	require.False(t, registry.Register(&stubJob{name: "group-order-expiry"}))

	jobs := registry.Jobs()
	require.Equal(t, []Job{jobA, jobB}, jobs)

	jobs[0] = nil
	require.NotNil(t, registry.Jobs()[0], "internal slice leaked")
}
