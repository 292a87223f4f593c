package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/wellness-booking/internal/model"
)

func TestProfileService_CreateThenUpdate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.profiles.CreateOrUpdate(ctx, ClientData{
		Email:     "claire@example.com",
		FirstName: "Claire",
		LastName:  "Dubois",
		Amount:    dec("55"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsNew)

	first := env.clock.Now()
	env.clock.Advance(48 * time.Hour)

	updated, err := env.profiles.CreateOrUpdate(ctx, ClientData{
		Email:  "  claire@example.com ",
		Amount: dec("99.99"),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsNew)
	assert.Equal(t, created.ClientID, updated.ClientID)

	p, err := env.store.Clients.GetByEmail(ctx, "claire@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Claire Dubois", p.Name)
	assert.Equal(t, 2, p.TotalBookings)
	assert.True(t, p.TotalSpent.Equal(dec("154.99")), "totalSpent = %s", p.TotalSpent)
	// floor(55/10) + floor(99.99/10)
	assert.Equal(t, int64(14), p.LoyaltyPoints)
	assert.True(t, p.FirstBookingDate.Equal(first))
	assert.True(t, p.LastBookingDate.Equal(env.clock.Now()))
	assert.Equal(t, []string{model.TagNewClient}, []string(p.Tags))
	assert.Equal(t, model.ClientStatusActive, p.Status)
}

func TestProfileService_RequiresEmail(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.profiles.CreateOrUpdate(context.Background(), ClientData{Email: "   ", Amount: dec("10")})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = env.profiles.CreateOrUpdate(context.Background(), ClientData{Email: "a@example.com", Amount: dec("-1")})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestProfileService_DistinctEmailsGetDistinctProfiles(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	a, err := env.profiles.CreateOrUpdate(ctx, ClientData{Email: "a@example.com"})
	require.NoError(t, err)
	b, err := env.profiles.CreateOrUpdate(ctx, ClientData{Email: "A@example.com"})
	require.NoError(t, err)

	assert.True(t, a.IsNew)
	assert.True(t, b.IsNew)
	assert.NotEqual(t, a.ClientID, b.ClientID)
}
