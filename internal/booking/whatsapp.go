package booking

import (
	"fmt"
	"net/url"
)

// DefaultWhatsAppPhone is the business contact number quote messages
// are handed off to.
const DefaultWhatsAppPhone = "6588911844"

// Fixed hand-off message templates.
const (
	MsgGeneral = "Hi BBQ Affair! I'm interested in your catering services."
	MsgBooking = "Hi BBQ Affair! I'd like to book a BBQ event."
	MsgMenu    = "Hi BBQ Affair! I'd like to know more about your menu options."
	MsgPricing = "Hi BBQ Affair! Could you provide pricing information for my event?"
	MsgSupport = "Hi BBQ Affair! I need assistance with my order."
)

// quoteDateLayout renders dates the way the quote message expects,
// day always two digits: "Jul 15, 2024", "Jul 05, 2024".
const quoteDateLayout = "Jan 02, 2006"

// QuoteMessage assembles the pre-filled quote request. Clause order is
// fixed: guests, then package, then date; package and date clauses are
// dropped when empty.
func QuoteMessage(guests int, date string, packageName string) string {
	msg := fmt.Sprintf("Hi BBQ Affair! I'd like to get a quote for %d guests", guests)
	if packageName != "" {
		msg += fmt.Sprintf(" for a %s", packageName)
	}
	if date != "" {
		msg += fmt.Sprintf(" on %s", date)
	}
	return msg + ". Could you help me with the details?"
}

func CustomOrderMessage(details string) string {
	return fmt.Sprintf("Hi BBQ Affair! I have a custom catering request: %s", details)
}

// QuoteMessage renders the hand-off message from whatever the draft
// currently holds. It reads the draft only; step and fields stay
// untouched.
func (d *Draft) QuoteMessage() string {
	date := ""
	if !d.EventDate.IsZero() {
		date = d.EventDate.Format(quoteDateLayout)
	}
	pkgName := ""
	if pkg, ok := d.Package(); ok {
		pkgName = pkg.Name
	}
	return QuoteMessage(d.GuestCount, date, pkgName)
}

// WhatsAppLink builds the wa.me URL carrying the message.
func WhatsAppLink(phone, message string) string {
	if phone == "" {
		phone = DefaultWhatsAppPhone
	}
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)
}
