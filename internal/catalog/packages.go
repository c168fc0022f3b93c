// Package catalog holds the fixed booking catalog: BBQ packages with
// per-guest pricing and guest-count eligibility, the bookable time
// slots, and the supported venue types. The booking wizard depends on
// this small static catalog only, never on the live menu.
package catalog

type Package struct {
	ID          string
	Name        string
	Description string
	// PricePerGuest is in Singapore dollars.
	PricePerGuest float64
	Includes      []string
	MinGuests     int
	MaxGuests     int
}

// Eligible reports whether the package supports the given guest count.
func (p Package) Eligible(guests int) bool {
	return guests >= p.MinGuests && guests <= p.MaxGuests
}

var packages = []Package{
	{
		ID:            "basic",
		Name:          "Basic BBQ Package",
		Description:   "Perfect for small gatherings",
		PricePerGuest: 25,
		Includes:      []string{"Choice of 2 proteins", "Basic sides", "Beverages", "Setup & cleanup"},
		MinGuests:     10,
		MaxGuests:     30,
	},
	{
		ID:            "premium",
		Name:          "Premium BBQ Package",
		Description:   "Our most popular option",
		PricePerGuest: 35,
		Includes:      []string{"Choice of 3 proteins", "Premium sides", "Beverages", "Dessert", "Setup & cleanup", "Dedicated chef"},
		MinGuests:     20,
		MaxGuests:     60,
	},
	{
		ID:            "deluxe",
		Name:          "Deluxe BBQ Package",
		Description:   "Ultimate BBQ experience",
		PricePerGuest: 50,
		Includes:      []string{"All proteins available", "Full sides selection", "Premium beverages", "Desserts", "Setup & cleanup", "Dedicated chef & server"},
		MinGuests:     30,
		MaxGuests:     100,
	},
}

// Packages returns the full package catalog. Callers must not mutate
// the returned slice.
func Packages() []Package {
	return packages
}

// FindPackage looks a package up by id. The second return value is
// false when the id is unknown; callers decide the fallback.
func FindPackage(id string) (Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// TimeSlots are the bookable event start times.
var TimeSlots = []string{
	"10:00 AM", "11:00 AM", "12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM",
	"4:00 PM", "5:00 PM", "6:00 PM", "7:00 PM", "8:00 PM",
}

func ValidTimeSlot(t string) bool {
	for _, s := range TimeSlots {
		if s == t {
			return true
		}
	}
	return false
}

type VenueType string

const (
	VenueHome   VenueType = "home"
	VenueOffice VenueType = "office"
	VenuePark   VenueType = "park"
	VenueEvent  VenueType = "venue"
	VenueOther  VenueType = "other"
)

var VenueTypes = []VenueType{VenueHome, VenueOffice, VenuePark, VenueEvent, VenueOther}

func ValidVenueType(v VenueType) bool {
	for _, t := range VenueTypes {
		if v == t {
			return true
		}
	}
	return false
}
