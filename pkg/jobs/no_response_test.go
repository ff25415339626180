package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpulse/leadpulse/pkg/leadstore"
	"github.com/leadpulse/leadpulse/pkg/ledger"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/leadpulse/leadpulse/pkg/models"
)

func TestNoResponseSweep(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -20)
	recent := now.AddDate(0, 0, -2)

	leads := leadstore.NewMemoryStore(
		models.Lead{ID: 1, FirstName: "Stale", FacebookName: "Stale Lead", ContactStatus: models.ContactStatusContacted, LastContacted: &old},
		models.Lead{ID: 2, FirstName: "Fresh", FacebookName: "Fresh Lead", ContactStatus: models.ContactStatusContacted, LastContacted: &recent},
		models.Lead{ID: 3, FirstName: "Quiet", FacebookName: "Quiet Lead", ContactStatus: models.ContactStatusNotContacted},
		models.Lead{ID: 4, FirstName: "Replied", FacebookName: "Replied Lead", ContactStatus: models.ContactStatusContacted, LastContacted: &old},
	)
	led := ledger.NewMemoryStore()

	// Lead 4 replied, so it must be skipped.
	responded := old.AddDate(0, 0, 1)
	require.NoError(t, led.Append(context.Background(), models.ContactAttempt{
		ID: 1, LeadID: 4, ContactType: models.ChannelEmail, MessageContent: "hi",
		SentAt: old, Status: models.DeliveryReplied, ResponseReceivedAt: &responded,
	}))

	sweeper := NewNoResponseSweeper(leads, led, 14, logger.Discard())
	sweeper.now = func() time.Time { return now }

	flipped, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	stale, err := leads.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusNoResponse, stale.ContactStatus)

	fresh, err := leads.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusContacted, fresh.ContactStatus)

	untouched, err := leads.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusNotContacted, untouched.ContactStatus)

	replied, err := leads.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusContacted, replied.ContactStatus)
}

func TestNoResponseSweep_Idempotent(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -30)

	leads := leadstore.NewMemoryStore(
		models.Lead{ID: 1, FirstName: "Stale", FacebookName: "Stale Lead", ContactStatus: models.ContactStatusContacted, LastContacted: &old},
	)

	sweeper := NewNoResponseSweeper(leads, ledger.NewMemoryStore(), 14, logger.Discard())
	sweeper.now = func() time.Time { return now }

	flipped, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	// Second pass finds nothing to do.
	flipped, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, flipped)
}
