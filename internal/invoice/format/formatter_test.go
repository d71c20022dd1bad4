package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceNumber(t *testing.T) {
	issued := time.Date(2026, 3, 7, 23, 30, 0, 0, time.UTC)

	cases := []struct {
		template string
		seq      int64
		want     string
	}{
		{DefaultTemplate, 42, "INV-202603-00042"},
		{"{YY}{MM}{DD}-{SEQ}", 7, "260307-7"},
		{"INV-{SEQ3}", 12345, "INV-12345"},
	}
	for _, tc := range cases {
		got, err := InvoiceNumber(tc.template, issued, tc.seq)
		require.NoError(t, err, tc.template)
		assert.Equal(t, tc.want, got)
	}
}

func TestInvoiceNumberUsesUTC(t *testing.T) {
	dubai := time.FixedZone("GST", 4*3600)
	issued := time.Date(2026, 4, 1, 2, 0, 0, 0, dubai)

	got, err := InvoiceNumber(DefaultTemplate, issued, 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-202603-00001", got)
}

func TestInvoiceNumberErrors(t *testing.T) {
	_, err := InvoiceNumber("", time.Now(), 1)
	assert.ErrorIs(t, err, ErrEmptyTemplate)

	_, err = InvoiceNumber(DefaultTemplate, time.Now(), 0)
	assert.ErrorIs(t, err, ErrInvalidSequence)

	_, err = InvoiceNumber("INV-{UNKNOWN}-{SEQ}", time.Now(), 1)
	assert.Error(t, err)
}
