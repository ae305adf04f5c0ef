package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLoggerFallsBackWithoutInitialize(t *testing.T) {
	assert.NotPanics(t, func() {
		GetLogger().Info("sanity check")
	})
}

func TestWithRoomAndWithConnectionAttachValues(t *testing.T) {
	ctx := WithRoom(context.Background(), "ABCDEF12")
	ctx = WithConnection(ctx, "conn-1")

	assert.Equal(t, "ABCDEF12", ctx.Value(RoomIDKey))
	assert.Equal(t, "conn-1", ctx.Value(ConnectionIDKey))
}

func TestInfoWarnErrorDoNotPanic(t *testing.T) {
	ctx := WithRoom(context.Background(), "ABCDEF12")
	assert.NotPanics(t, func() {
		Info(ctx, "room event")
		Warn(ctx, "room warning")
		Error(ctx, "room error")
	})
}
