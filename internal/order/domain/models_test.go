package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusQuoted, false},
		{StatusSubmitted, StatusPricingReview, true},
		{StatusPricingReview, StatusQuoted, true},
		{StatusQuoted, StatusPricingReview, true},
		{StatusQuoted, StatusDeclined, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusInPreparation, StatusCancelled, false},
		{StatusDelivered, StatusReturned, true},
		{StatusReturned, StatusClosed, true},
		{StatusDeclined, StatusClosed, true},
		{StatusClosed, StatusDraft, false},
		{StatusCancelled, StatusDraft, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestEveryTransitionTargetIsKnown(t *testing.T) {
	for from, targets := range transitions {
		assert.True(t, ValidStatus(from), from)
		for _, to := range targets {
			assert.True(t, ValidStatus(to), to)
		}
	}
}

func TestClientMayTransition(t *testing.T) {
	assert.True(t, ClientMayTransition(StatusDraft, StatusSubmitted))
	assert.True(t, ClientMayTransition(StatusQuoted, StatusConfirmed))
	assert.True(t, ClientMayTransition(StatusQuoted, StatusDeclined))
	assert.True(t, ClientMayTransition(StatusSubmitted, StatusCancelled))
	assert.False(t, ClientMayTransition(StatusConfirmed, StatusCancelled))
	assert.False(t, ClientMayTransition(StatusSubmitted, StatusPricingReview))
	assert.False(t, ClientMayTransition(StatusPricingReview, StatusQuoted))
}

func TestItemsEditable(t *testing.T) {
	assert.True(t, ItemsEditable(StatusDraft))
	assert.True(t, ItemsEditable(StatusPricingReview))
	assert.False(t, ItemsEditable(StatusQuoted))
	assert.False(t, ItemsEditable(StatusConfirmed))
}
