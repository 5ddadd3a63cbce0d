package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishFileEvent_Delivery(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	b.PublishFileEvent("created", "/v/a.mschema")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: "+EventFileCreated) {
			t.Errorf("missing event name in %q", s)
		}
		if !strings.Contains(s, `"path":"/v/a.mschema"`) {
			t.Errorf("missing path in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for frame")
	}

	// The first change in a window also carries the coalesced refresh.
	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: "+EventVaultChanged) {
			t.Errorf("expected %s frame, got %q", EventVaultChanged, msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for refresh frame")
	}
}

func TestPublishFileEvent_RefreshThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	// First change triggers vault.changed; a second change inside the
	// window must not.
	b.PublishFileEvent("created", "/v/a.mschema")
	b.PublishFileEvent("updated", "/v/b.mschema")

	time.Sleep(50 * time.Millisecond)
	refreshCount := 0
	fileCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), EventVaultChanged) {
				refreshCount++
			} else {
				fileCount++
			}
		default:
			break loop
		}
	}

	if fileCount != 2 {
		t.Errorf("file frames = %d, want 2", fileCount)
	}
	if refreshCount != 1 {
		t.Errorf("refresh frames = %d, want 1 (throttled)", refreshCount)
	}
}

func TestPublishFileEvent_Kinds(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	b.PublishFileEvent("created", "a")
	b.PublishFileEvent("updated", "a")
	b.PublishFileEvent("deleted", "a")

	want := map[string]bool{
		"event: " + EventFileCreated: false,
		"event: " + EventFileUpdated: false,
		"event: " + EventFileDeleted: false,
	}
	deadline := time.After(time.Second)
	for seen := 0; seen < 4; {
		select {
		case msg := <-ch:
			seen++
			for k := range want {
				if strings.Contains(string(msg), k) {
					want[k] = true
				}
			}
		case <-deadline:
			t.Fatalf("timeout; got %v", want)
		}
	}
	for k, ok := range want {
		if !ok {
			t.Errorf("missing %q", k)
		}
	}
}

func TestPublishFileEvent_UnknownKindDropped(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	// Not a watcher kind: no file frame, and no refresh either.
	b.PublishFileEvent("renamed", "/v/a.mschema")

	select {
	case msg := <-ch:
		t.Fatalf("unknown kind produced a frame: %q", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give the handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishFileEvent("updated", "/v/x.mschema")
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: "+EventFileUpdated) {
		t.Errorf("handler output missing frame: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestStalledClientDoesNotBlockBroker(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	// Never drained; once the per-client buffer fills, further frames are
	// skipped and publishing must not block.
	for i := 0; i < 70; i++ {
		b.PublishFileEvent("updated", "/v/x.mschema")
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Safe no-op after close.
	b.PublishFileEvent("updated", "x")
}
