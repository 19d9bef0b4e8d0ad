package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestConsumerRetriesBeforeCommittingLaterOffsets(t *testing.T) {
	r := newFakeReader(
		kafka.Message{Partition: 0, Offset: 1},
		kafka.Message{Partition: 0, Offset: 2},
	)
	c := newConsumer(r, 4, zap.NewNop())
	c.minBackoff, c.maxBackoff = time.Millisecond, 5*time.Millisecond

	var (
		mu       sync.Mutex
		attempts = map[int64]int{}
		handled  []int64
	)
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[m.Offset]++
		if m.Offset == 1 && attempts[m.Offset] < 3 {
			return errors.New("printer offline")
		}
		handled = append(handled, m.Offset)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1, 2}, r.commits())
	mu.Lock()
	assert.Equal(t, []int64{1, 2}, handled)
	assert.Equal(t, 3, attempts[1])
	mu.Unlock()
	assert.True(t, r.closed)
}

func TestConsumerLeavesFailingMessageUncommittedOnShutdown(t *testing.T) {
	r := newFakeReader(kafka.Message{Partition: 0, Offset: 7})
	c := newConsumer(r, 1, zap.NewNop())
	c.minBackoff, c.maxBackoff = time.Millisecond, time.Millisecond

	calls := make(chan struct{}, 64)
	h := func(context.Context, kafka.Message) error {
		select {
		case calls <- struct{}{}:
		default:
		}
		return errors.New("always fails")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	<-calls
	<-calls
	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, r.commits())
}
