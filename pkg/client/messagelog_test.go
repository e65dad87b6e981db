package client

import (
	"testing"
	"time"
)

func msg(id, body string) Message {
	return Message{
		ID:             id,
		ConversationID: "c1",
		Body:           body,
		Sender:         Sender{ID: "u1", DisplayName: "Ana"},
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func assertIDs(t *testing.T, log MessageLog, want ...string) {
	t.Helper()
	if len(log) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(log))
	}
	for i, id := range want {
		if log[i].ID != id {
			t.Errorf("position %d: expected id %q, got %q", i, id, log[i].ID)
		}
	}
}

func TestSetAllReplacesLog(t *testing.T) {
	log := MessageLog{msg("old", "stale")}
	log = log.SetAll([]Message{msg("m1", "a"), msg("m2", "b")})
	assertIDs(t, log, "m1", "m2")
}

func TestAppendKeepsOrder(t *testing.T) {
	var log MessageLog
	log = log.SetAll([]Message{msg("m1", "a"), msg("m2", "b")})
	log = log.Append(msg("m3", "c"))
	assertIDs(t, log, "m1", "m2", "m3")
}

func TestReconcileReplacesInPlace(t *testing.T) {
	log := MessageLog{msg("p", "hi"), msg("m2", "yo")}
	final := msg("server-1", "hi")
	log = log.Reconcile("p", final)

	assertIDs(t, log, "server-1", "m2")
	if log[0].Body != "hi" {
		t.Errorf("expected reconciled body %q, got %q", "hi", log[0].Body)
	}
}

func TestReconcileMissIsNoop(t *testing.T) {
	log := MessageLog{msg("m1", "a"), msg("m2", "b")}
	out := log.Reconcile("nonexistent", msg("m3", "c"))
	assertIDs(t, out, "m1", "m2")
}

// Replaying the same action sequence over the same starting log must give
// identical results, and no transition may mutate its inputs.
func TestTransitionsArePure(t *testing.T) {
	initial := MessageLog{msg("m1", "a")}
	history := []Message{msg("h1", "x"), msg("h2", "y")}

	apply := func(start MessageLog) MessageLog {
		l := start.SetAll(history)
		l = l.Append(msg("p", "optimistic"))
		l = l.Reconcile("p", msg("server-9", "optimistic"))
		l = l.Reconcile("missing", msg("ghost", "?"))
		return l
	}

	first := apply(initial)
	second := apply(initial)

	assertIDs(t, first, "h1", "h2", "server-9")
	assertIDs(t, second, "h1", "h2", "server-9")

	if initial[0].ID != "m1" {
		t.Errorf("starting log was mutated: %v", initial)
	}
	if history[0].ID != "h1" || history[1].ID != "h2" {
		t.Errorf("history argument was mutated: %v", history)
	}
}
