package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndGaugesAreUsable(t *testing.T) {
	ActiveConnections.Inc()
	if v := testutil.ToFloat64(ActiveConnections); v < 1 {
		t.Errorf("expected ActiveConnections >= 1, got %v", v)
	}

	ActiveRooms.Set(3)
	if v := testutil.ToFloat64(ActiveRooms); v != 3 {
		t.Errorf("expected ActiveRooms == 3, got %v", v)
	}

	RoomParticipants.WithLabelValues("ABCDEF12").Set(2)
	if v := testutil.ToFloat64(RoomParticipants.WithLabelValues("ABCDEF12")); v != 2 {
		t.Errorf("expected RoomParticipants == 2, got %v", v)
	}

	WSEvents.WithLabelValues("chat-message", "ok").Inc()
	if v := testutil.ToFloat64(WSEvents.WithLabelValues("chat-message", "ok")); v < 1 {
		t.Errorf("expected WSEvents >= 1, got %v", v)
	}

	ChatMessages.Inc()
	UploadBytesReceived.Add(1024)
	UploadSessionsActive.Inc()
	UploadErrors.WithLabelValues("FileExceeded").Inc()
}
