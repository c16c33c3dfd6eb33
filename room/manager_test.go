package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"cosmic/protocol"
)

func TestManagerConnectAssignsUUIDs(t *testing.T) {
	m := NewManager(Options{SnapshotInterval: time.Hour, Logger: quietLogger()})
	m.Start()
	m.Start()
	defer m.Stop()

	fa, fb := newFakeConn(), newFakeConn()
	a, err := m.Connect(fa)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	b, err := m.Connect(fb)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if a == b {
		t.Fatalf("ids collide: %s", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("id %q is not a uuid: %v", a, err)
	}
	waitFor(t, fa, protocol.MsgConnectionEstablished)

	b2, _ := protocol.Encode(protocol.MsgPlayerJoin, protocol.PlayerJoin{PlayerName: "Alice", RocketType: "green"})
	env, _ := protocol.DecodeEnvelope(b2)
	m.Deliver(a, env)
	waitFor(t, fa, protocol.MsgFullGameState)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	info, err := m.Info(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Players != 1 || info.Connections != 2 || info.HostID != a {
		t.Fatalf("info = %+v", info)
	}

	m.Disconnect(a)
	info, err = m.Info(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Players != 0 || info.Connections != 1 {
		t.Fatalf("info after disconnect = %+v", info)
	}
}

func TestManagerStoppedRejectsConnections(t *testing.T) {
	m := NewManager(Options{Logger: quietLogger()})
	m.Start()
	m.Stop()
	m.Stop()

	// A buffered inbox may still take the post, so only the error kind is checked.
	if _, err := m.Connect(newFakeConn()); err != nil && !errors.Is(err, ErrStopped) {
		t.Fatalf("connect err = %v", err)
	}
	if _, err := m.Info(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("info err = %v, want ErrStopped", err)
	}
}

func TestManagerInfoHonoursContextWhenInboxFull(t *testing.T) {
	m := NewManager(Options{SnapshotInterval: time.Hour, InboxSize: 1, Logger: quietLogger()})
	defer m.Stop()
	// Not started: nothing drains the inbox.
	m.room.Inbox <- Leave{ID: "nobody"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := m.Info(ctx)
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("err = %v, want deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Info blocked past its context")
	}
}
