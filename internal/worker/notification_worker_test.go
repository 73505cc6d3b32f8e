package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/mailer"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func TestWorkerDrainsOnStop(t *testing.T) {
	rec := &recordingMailer{}
	w := NewNotificationWorker(rec, 4, zap.NewNop())

	require.True(t, w.Enqueue(mailer.Message{To: []string{"a@x.io"}, Subject: "one"}))
	require.True(t, w.Enqueue(mailer.Message{To: []string{"b@x.io"}, Subject: "two"}))
	go w.run(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	assert.Len(t, rec.sent, 2)
	assert.False(t, w.Enqueue(mailer.Message{Subject: "late"}))
}

func TestWorkerDropsWhenFull(t *testing.T) {
	w := NewNotificationWorker(&recordingMailer{}, 1, zap.NewNop())

	assert.True(t, w.Enqueue(mailer.Message{Subject: "first"}))
	assert.False(t, w.Enqueue(mailer.Message{Subject: "second"}))
}
