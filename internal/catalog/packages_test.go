package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bbqaffair/catering-booking-and-orders/internal/catalog"
)

func TestFindPackage(t *testing.T) {
	pkg, ok := catalog.FindPackage("premium")
	assert.True(t, ok)
	assert.Equal(t, "Premium BBQ Package", pkg.Name)
	assert.Equal(t, 35.0, pkg.PricePerGuest)

	_, ok = catalog.FindPackage("platinum")
	assert.False(t, ok)
}

func TestEligible_Boundaries(t *testing.T) {
	basic, _ := catalog.FindPackage("basic")

	assert.False(t, basic.Eligible(9))
	assert.True(t, basic.Eligible(10))
	assert.True(t, basic.Eligible(30))
	assert.False(t, basic.Eligible(31))
}

func TestPackages_AllRangesOverlap(t *testing.T) {
	// Every guest count between the smallest min and the largest max
	// must be served by at least one package.
	for g := 10; g <= 100; g++ {
		any := false
		for _, p := range catalog.Packages() {
			if p.Eligible(g) {
				any = true
				break
			}
		}
		assert.True(t, any, "no package for %d guests", g)
	}
}

func TestValidTimeSlot(t *testing.T) {
	assert.True(t, catalog.ValidTimeSlot("10:00 AM"))
	assert.True(t, catalog.ValidTimeSlot("8:00 PM"))
	assert.False(t, catalog.ValidTimeSlot("9:00 PM"))
	assert.False(t, catalog.ValidTimeSlot("12:00"))
}

func TestValidVenueType(t *testing.T) {
	assert.True(t, catalog.ValidVenueType(catalog.VenuePark))
	assert.True(t, catalog.ValidVenueType(catalog.VenueType("other")))
	assert.False(t, catalog.ValidVenueType(catalog.VenueType("boat")))
}
