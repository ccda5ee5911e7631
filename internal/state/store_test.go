package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/gemnote/internal/anytype"
)

func TestStatus_String(t *testing.T) {
	cases := map[Status]string{
		StatusDisconnected: "disconnected",
		StatusScanning:     "scanning",
		StatusConnected:    "connected",
		Status(42):         "disconnected",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Fatalf("Status(%d).String() = %q, want %q", st, got, want)
		}
	}
}

func TestStore_ConnectAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.SetConnected("http://10.0.0.5:31010", []anytype.Space{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})

	snap := s.Snapshot()
	if snap.Status != StatusConnected || !snap.Connected() {
		t.Fatalf("Status = %v, want connected", snap.Status)
	}
	if snap.BaseURL != "http://10.0.0.5:31010" {
		t.Fatalf("BaseURL = %q", snap.BaseURL)
	}
	if len(snap.Spaces) != 2 || snap.Spaces[0].ID != "a" {
		t.Fatalf("Spaces = %#v, want 2 spaces", snap.Spaces)
	}
	if snap.LastChange.Before(before) {
		t.Fatalf("LastChange = %v, want >= %v", snap.LastChange, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Spaces[0].ID = "zzz"
	if again := s.Snapshot(); again.Spaces[0].ID != "a" {
		t.Fatalf("Snapshot should clone spaces; got %q", again.Spaces[0].ID)
	}
}

func TestStore_DisconnectKeepsSelection(t *testing.T) {
	var s Store
	s.SetConnected("http://h:1", []anytype.Space{{ID: "a", Name: "A"}})
	s.SelectSpace("a", "A")
	s.SetTypes([]anytype.ObjectType{{Key: "note", Name: "Note"}})
	s.SelectType("note")

	origErr := errors.New("boom")
	s.SetDisconnected(origErr)

	snap := s.Snapshot()
	if snap.Status != StatusDisconnected || snap.BaseURL != "" {
		t.Fatalf("snapshot = %+v, want disconnected without url", snap)
	}
	if snap.SpaceID != "a" || snap.TypeKey != "note" || len(snap.Types) != 1 {
		t.Fatalf("selection lost on disconnect: %+v", snap)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConnectDropsVanishedSpace(t *testing.T) {
	var s Store
	s.SelectSpace("gone", "Gone")
	s.SetTypes([]anytype.ObjectType{{Key: "note"}})

	s.SetConnected("http://h:1", []anytype.Space{{ID: "other"}})
	snap := s.Snapshot()
	if snap.SpaceID != "" || snap.SpaceName != "" || snap.Types != nil {
		t.Fatalf("stale space kept: %+v", snap)
	}

	s.SelectSpace("other", "Other")
	s.SetConnected("http://h:2", []anytype.Space{{ID: "other"}})
	if got := s.Snapshot().SpaceID; got != "other" {
		t.Fatalf("SpaceID = %q, want other", got)
	}
}

func TestStore_SelectSpaceClearsTypes(t *testing.T) {
	var s Store
	s.SelectSpace("a", "A")
	s.SetTypes([]anytype.ObjectType{{Key: "note"}})

	s.SelectSpace("a", "A renamed")
	if len(s.Snapshot().Types) != 1 {
		t.Fatalf("reselecting the same space should keep types")
	}
	s.SelectSpace("b", "B")
	if s.Snapshot().Types != nil {
		t.Fatalf("switching space should clear types")
	}
}

func TestStore_ScanningForgetsEndpoint(t *testing.T) {
	var s Store
	s.SetConnected("http://h:1", nil)
	s.SetScanning()
	snap := s.Snapshot()
	if snap.Status != StatusScanning || snap.BaseURL != "" {
		t.Fatalf("snapshot = %+v, want scanning without url", snap)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.SetDisconnected(errors.New("fail 1"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.SetDisconnected(errors.New("fail 2"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// A user-initiated disconnect without error does not count.
	s.SetDisconnected(nil)
	if got := s.Snapshot().ConsecutiveFailures; got != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", got)
	}

	s.SetConnected("http://h:1", nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success should reset failures: %d", snap.ConsecutiveFailures)
	}
}

func TestStore_SubscribeCoalesces(t *testing.T) {
	var s Store
	ch := s.Subscribe()

	s.SetScanning()
	s.SetDisconnected(errors.New("x"))
	s.RecordError(errors.New("y"))

	select {
	case <-ch:
	default:
		t.Fatal("expected a notification")
	}
	select {
	case <-ch:
		t.Fatal("notifications should coalesce into one pending value")
	default:
	}
	if got := s.Snapshot().LastError; got == nil || got.Error() != "y" {
		t.Fatalf("LastError = %v, want y", got)
	}
}
