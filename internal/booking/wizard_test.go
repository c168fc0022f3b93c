package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbqaffair/catering-booking-and-orders/internal/catalog"
	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
)

var testNow = time.Date(2024, time.July, 1, 15, 30, 0, 0, time.UTC)

func completeDraft(t *testing.T) *Draft {
	t.Helper()
	d := NewDraft(testNow)
	require.NoError(t, d.SetEventDate(testNow.AddDate(0, 0, 14), testNow))
	require.NoError(t, d.SetEventTime("12:00 PM"))
	require.NoError(t, d.SetGuestCount(25))
	require.NoError(t, d.SelectPackage("premium"))
	require.NoError(t, d.SetVenue(catalog.VenuePark, "East Coast Park Area D"))
	d.SetContact("Tan Wei Ming", "weiming@example.com", "91234567")
	return d
}

func TestSetEventDate_TodayRejected(t *testing.T) {
	d := NewDraft(testNow)

	err := d.SetEventDate(testNow, testNow)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, d.EventDate.IsZero())

	// Even 23:59 today is too early.
	lateToday := time.Date(2024, time.July, 1, 23, 59, 0, 0, time.UTC)
	assert.Error(t, d.SetEventDate(lateToday, testNow))

	// Tomorrow at any time of day is fine.
	require.NoError(t, d.SetEventDate(testNow.AddDate(0, 0, 1), testNow))
	assert.Equal(t, time.Date(2024, time.July, 2, 0, 0, 0, 0, time.UTC), d.EventDate)
}

func TestSetEventTime(t *testing.T) {
	d := NewDraft(testNow)
	assert.Error(t, d.SetEventTime("9:00 AM"))
	assert.Empty(t, d.EventTime)
	assert.NoError(t, d.SetEventTime("10:00 AM"))
}

func TestSelectPackage_EligibilityEnforced(t *testing.T) {
	d := NewDraft(testNow)
	require.NoError(t, d.SetGuestCount(5))

	// basic needs at least 10 guests; the draft must stay unchanged.
	err := d.SelectPackage("basic")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, d.PackageID)

	assert.ErrorIs(t, d.SelectPackage("platinum"), domain.ErrNotFound)

	require.NoError(t, d.SetGuestCount(10))
	require.NoError(t, d.SelectPackage("basic"))
	assert.Equal(t, "basic", d.PackageID)
}

func TestSelectPackage_Boundaries(t *testing.T) {
	d := NewDraft(testNow)

	require.NoError(t, d.SetGuestCount(60))
	assert.NoError(t, d.SelectPackage("premium"))

	require.NoError(t, d.SetGuestCount(61))
	assert.Error(t, d.SelectPackage("premium"))
	assert.NoError(t, d.SelectPackage("deluxe"))
}

func TestNext_GuardedNoOp(t *testing.T) {
	d := NewDraft(testNow)

	// Nothing filled in: Next must not move.
	assert.False(t, d.Next())
	assert.Equal(t, StepEventDetails, d.Step)

	// Partial step 1 still blocks.
	require.NoError(t, d.SetEventDate(testNow.AddDate(0, 0, 3), testNow))
	require.NoError(t, d.SetEventTime("6:00 PM"))
	require.NoError(t, d.SetGuestCount(30))
	assert.False(t, d.Next())
	assert.Equal(t, StepEventDetails, d.Step)

	require.NoError(t, d.SelectPackage("premium"))
	assert.True(t, d.Next())
	assert.Equal(t, StepVenue, d.Step)

	// Venue guard not yet satisfied.
	assert.False(t, d.Next())
	assert.Equal(t, StepVenue, d.Step)
}

func TestNext_ClampsAtConfirmation(t *testing.T) {
	d := completeDraft(t)
	assert.True(t, d.Next())
	assert.True(t, d.Next())
	assert.True(t, d.Next())
	assert.Equal(t, StepConfirmation, d.Step)

	assert.False(t, d.Next())
	assert.Equal(t, StepConfirmation, d.Step)
}

func TestPrev_ClampsAtFirstStep(t *testing.T) {
	d := NewDraft(testNow)
	assert.False(t, d.Prev())
	assert.Equal(t, StepEventDetails, d.Step)

	d.Step = StepContact
	assert.True(t, d.Prev())
	assert.Equal(t, StepVenue, d.Step)
}

func TestComplete(t *testing.T) {
	d := completeDraft(t)
	assert.True(t, d.Complete())

	d.Email = ""
	assert.False(t, d.Complete())
}

func TestEstimate(t *testing.T) {
	d := NewDraft(testNow)
	assert.Equal(t, 0.0, d.Estimate())
	assert.Equal(t, 0.0, d.EstimateWithTax())

	require.NoError(t, d.SetGuestCount(25))
	assert.Equal(t, 0.0, d.Estimate())

	require.NoError(t, d.SelectPackage("premium"))
	assert.Equal(t, 875.0, d.Estimate())
	assert.Equal(t, 945.0, d.EstimateWithTax())
}

func TestEligiblePackages(t *testing.T) {
	d := NewDraft(testNow)
	require.NoError(t, d.SetGuestCount(15))

	opts := d.EligiblePackages()
	require.Len(t, opts, 3)

	byID := map[string]PackageOption{}
	for _, o := range opts {
		byID[o.ID] = o
	}
	assert.True(t, byID["basic"].Eligible)
	assert.Empty(t, byID["basic"].Reason)
	assert.False(t, byID["premium"].Eligible)
	assert.Equal(t, "Not available for 15 guests", byID["premium"].Reason)
	assert.False(t, byID["deluxe"].Eligible)
}
