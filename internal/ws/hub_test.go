package ws

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []string
	closed   bool
	failing  bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, string(data))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestPublishIsScopedToTenant(t *testing.T) {
	hub, _ := startHub(t)
	tenantA, tenantB := uuid.New(), uuid.New()

	connA, connB, connAdmin := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Register(NewClient(connA, tenantA))
	hub.Register(NewClient(connB, tenantB))
	hub.Register(NewClient(connAdmin, uuid.Nil))
	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	hub.Publish(tenantA, map[string]string{"type": "purchase_return"})

	require.Eventually(t, func() bool { return len(connA.received()) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(connAdmin.received()) == 1 }, time.Second, 5*time.Millisecond)
	assert.JSONEq(t, `{"type":"purchase_return"}`, connA.received()[0])
	assert.Empty(t, connB.received())
}

func TestFailingClientIsDropped(t *testing.T) {
	hub, _ := startHub(t)
	tenant := uuid.New()

	broken := &fakeConn{failing: true}
	hub.Register(NewClient(broken, tenant))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(tenant, "ping")

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
}

func TestUnregisterAndShutdownCloseConnections(t *testing.T) {
	hub, cancel := startHub(t)

	first, second := &fakeConn{}, &fakeConn{}
	client := NewClient(first, uuid.New())
	hub.Register(client)
	hub.Register(NewClient(second, uuid.New()))
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, first.isClosed, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, second.isClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())

	late := &fakeConn{}
	hub.Register(NewClient(late, uuid.New()))
	assert.True(t, late.isClosed())
}

func TestRegisterAfterShutdownAlwaysCloses(t *testing.T) {
	hub, cancel := startHub(t)
	cancel()
	<-hub.done

	for i := 0; i < 200; i++ {
		conn := &fakeConn{}
		hub.Register(NewClient(conn, uuid.New()))
		require.True(t, conn.isClosed(), "registration %d was queued after shutdown", i)
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestPublishDoesNotBlockWithoutRunner(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish(uuid.New(), i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with a full queue")
	}
}
