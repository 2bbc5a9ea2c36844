package notify

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsOrder(t *testing.T) {
	r := NewRecorder()
	r.Notify(t.Context(), Info("Processing...", "Creating checkout session..."))
	r.Notify(t.Context(), Success("Redirecting", ""))

	notices := r.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, LevelInfo, notices[0].Level)
	assert.Equal(t, "Redirecting", notices[1].Title)

	notices[0].Title = "changed"
	assert.Equal(t, "Processing...", r.Notices()[0].Title)
}

func TestLogNotifierLevels(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewLog(logger)

	n.Notify(t.Context(), Error("Error", "Failed to start checkout process."))
	n.Notify(t.Context(), Warning("Cart Empty", "Please add items before checkout."))
	n.Notify(t.Context(), Success("Added to Cart", "Latte added"))

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, logrus.InfoLevel, entries[2].Level)
	assert.Equal(t, "Latte added", entries[2].Data["description"])
}
