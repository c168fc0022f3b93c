// Package booking implements the four-step booking wizard as a draft
// state machine: event details, venue, contact, confirmation. A draft
// lives until it is submitted or its session expires; it never touches
// a store by itself.
package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bbqaffair/catering-booking-and-orders/internal/catalog"
	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
)

type Step int

const (
	StepEventDetails Step = 1
	StepVenue        Step = 2
	StepContact      Step = 3
	StepConfirmation Step = 4
)

type Draft struct {
	ID   uuid.UUID `json:"id"`
	Step Step      `json:"step"`

	// Step 1: event details.
	EventDate  time.Time `json:"event_date"`
	EventTime  string    `json:"event_time"`
	GuestCount int       `json:"guest_count"`
	PackageID  string    `json:"package_id"`

	// Step 2: venue.
	VenueType catalog.VenueType `json:"venue_type"`
	Address   string            `json:"address"`

	// Step 3: contact.
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"special_requests"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewDraft(now time.Time) *Draft {
	return &Draft{
		ID:        uuid.New(),
		Step:      StepEventDetails,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MinEventDate is the earliest selectable event date: the start of the
// day after now. Today is never bookable.
func MinEventDate(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// SetEventDate rejects dates before tomorrow, relative to now.
func (d *Draft) SetEventDate(date time.Time, now time.Time) error {
	y, m, day := date.Date()
	date = time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	if date.Before(MinEventDate(now)) {
		ve := &domain.ValidationError{}
		ve.Add("event_date", "earliest available date is tomorrow")
		return ve
	}
	d.EventDate = date
	return nil
}

func (d *Draft) SetEventTime(slot string) error {
	if !catalog.ValidTimeSlot(slot) {
		ve := &domain.ValidationError{}
		ve.Add("event_time", "not an available time slot")
		return ve
	}
	d.EventTime = slot
	return nil
}

// SetGuestCount accepts any positive count. A previously selected
// package is kept even if the new count falls outside its range; the
// step guard only checks presence, and eligibility is re-checked at
// selection time.
func (d *Draft) SetGuestCount(n int) error {
	if n <= 0 {
		ve := &domain.ValidationError{}
		ve.Add("guest_count", "must be a positive number")
		return ve
	}
	d.GuestCount = n
	return nil
}

// SelectPackage picks a catalog package. Selection is rejected, with
// the draft unchanged, unless the current guest count falls inside the
// package's supported range.
func (d *Draft) SelectPackage(id string) error {
	pkg, ok := catalog.FindPackage(id)
	if !ok {
		return domain.ErrNotFound
	}
	if !pkg.Eligible(d.GuestCount) {
		ve := &domain.ValidationError{}
		ve.Add("package_id", fmt.Sprintf("%s is not available for %d guests (supports %d-%d)",
			pkg.Name, d.GuestCount, pkg.MinGuests, pkg.MaxGuests))
		return ve
	}
	d.PackageID = id
	return nil
}

func (d *Draft) SetVenue(venueType catalog.VenueType, address string) error {
	ve := &domain.ValidationError{}
	if venueType != "" && !catalog.ValidVenueType(venueType) {
		ve.Add("venue_type", "unknown venue type")
	}
	if err := ve.Err(); err != nil {
		return err
	}
	if venueType != "" {
		d.VenueType = venueType
	}
	if address != "" {
		d.Address = address
	}
	return nil
}

func (d *Draft) SetContact(name, email, phone string) {
	if name != "" {
		d.Name = name
	}
	if email != "" {
		d.Email = email
	}
	if phone != "" {
		d.Phone = phone
	}
}

// CanAdvance reports whether the guard for the given step passes.
// Step 4 is the terminal review step and always passes.
func (d *Draft) CanAdvance(step Step) bool {
	switch step {
	case StepEventDetails:
		return !d.EventDate.IsZero() && d.EventTime != "" && d.GuestCount > 0 && d.PackageID != ""
	case StepVenue:
		return d.VenueType != "" && d.Address != ""
	case StepContact:
		return d.Name != "" && d.Email != "" && d.Phone != ""
	default:
		return true
	}
}

// Next advances to the following step when the current guard passes.
// At the last step, or with an unsatisfied guard, it is a no-op.
func (d *Draft) Next() bool {
	if d.Step >= StepConfirmation || !d.CanAdvance(d.Step) {
		return false
	}
	d.Step++
	return true
}

// Prev steps back, a no-op at step one.
func (d *Draft) Prev() bool {
	if d.Step <= StepEventDetails {
		return false
	}
	d.Step--
	return true
}

// Complete reports whether every guard passes, i.e. the draft holds
// everything submission needs.
func (d *Draft) Complete() bool {
	return d.CanAdvance(StepEventDetails) && d.CanAdvance(StepVenue) && d.CanAdvance(StepContact)
}

// Package returns the selected catalog package, when one is selected.
func (d *Draft) Package() (catalog.Package, bool) {
	if d.PackageID == "" {
		return catalog.Package{}, false
	}
	return catalog.FindPackage(d.PackageID)
}

// Estimate is the running price estimate: per-guest package price times
// guest count, zero until both are set. Derived, never stored.
func (d *Draft) Estimate() float64 {
	pkg, ok := d.Package()
	if !ok || d.GuestCount == 0 {
		return 0
	}
	return pkg.PricePerGuest * float64(d.GuestCount)
}

// EstimateWithTax is the displayed total including GST.
func (d *Draft) EstimateWithTax() float64 {
	return domain.Round2(d.Estimate() * (1 + domain.GSTRate))
}

// EligiblePackages returns each catalog package with its eligibility
// for the draft's guest count, so the UI can show which are selectable
// and why the rest are not.
type PackageOption struct {
	catalog.Package
	Eligible bool
	Reason   string
}

func (d *Draft) EligiblePackages() []PackageOption {
	opts := make([]PackageOption, 0, len(catalog.Packages()))
	for _, pkg := range catalog.Packages() {
		opt := PackageOption{Package: pkg, Eligible: pkg.Eligible(d.GuestCount)}
		if !opt.Eligible && d.GuestCount > 0 {
			opt.Reason = fmt.Sprintf("Not available for %d guests", d.GuestCount)
		}
		opts = append(opts, opt)
	}
	return opts
}
