package realtime

import (
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// A connection handle can outlive its Close: the router may still be fanning
// out to a replaced session. Send must keep returning errors, never panic.
func TestSendAfterCloseReturnsError(t *testing.T) {
	router := NewRouter()
	defer router.Close()

	peer := dialPeer(t, router, "u1")
	peer.conn.Close(websocket.CloseNormalClosure, "bye")

	for i := 0; i < 100; i++ {
		if err := peer.conn.Send([]byte("late")); err == nil {
			t.Fatal("expected error when sending on a closed connection")
		}
	}
}

func TestSendRacingCloseDoesNotPanic(t *testing.T) {
	router := NewRouter()
	defer router.Close()

	peer := dialPeer(t, router, "u1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = peer.conn.Send([]byte("payload"))
			}
		}()
	}
	peer.conn.Close(websocket.CloseGoingAway, "replaced")
	wg.Wait()

	if err := peer.conn.Send([]byte("after")); err == nil {
		t.Error("expected error after close")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	router := NewRouter()
	defer router.Close()

	peer := dialPeer(t, router, "u1")
	peer.conn.Close(websocket.CloseNormalClosure, "first")
	peer.conn.Close(websocket.CloseNormalClosure, "second")
}
