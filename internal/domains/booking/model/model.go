package model

import (
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldGuestName   = "guest_name"
	FieldGuestPhone  = "guest_phone"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldBookingType = "booking_type"
	FieldPrice       = "price"
	FieldCreatedAt   = "created_at"
)

// BookingType is a closed set. Values outside of it are rejected during
// request validation and never reach the ledger.
type BookingType string

const (
	TypeStay     BookingType = "Stay"
	TypeFunction BookingType = "Function"
)

var dailyRates = map[BookingType]int64{
	TypeStay:     4000,
	TypeFunction: 5500,
}

func ParseBookingType(value string) (BookingType, bool) {
	bookingType := BookingType(value)

	_, known := dailyRates[bookingType]

	return bookingType, known
}

func (t BookingType) DailyRate() int64 {
	return dailyRates[t]
}

// NumDays counts whole days between the two dates. A checkout on or before
// the check-in day still bills a single day.
func NumDays(startDate, endDate time.Time) int64 {
	days := int64(endDate.Sub(startDate) / (24 * time.Hour))
	if days < 1 {
		return 1
	}

	return days
}

// Quote derives the amount due for a stay, integer currency units only.
func Quote(bookingType BookingType, startDate, endDate time.Time) (price int64, numDays int64) {
	numDays = NumDays(startDate, endDate)

	return bookingType.DailyRate() * numDays, numDays
}

type Booking struct {
	ID          int64       `db:"id"`
	GuestName   string      `db:"guest_name"`
	GuestPhone  string      `db:"guest_phone"`
	StartDate   time.Time   `db:"start_date"`
	EndDate     time.Time   `db:"end_date"`
	BookingType BookingType `db:"booking_type"`
	Price       int64       `db:"price"`
	CreatedAt   time.Time   `db:"created_at"`
}

// Overlaps reports whether the booking collides with the given range.
// Sharing a boundary day is a valid same-day handoff.
func (b *Booking) Overlaps(startDate, endDate time.Time) bool {
	return b.StartDate.Before(endDate) && b.EndDate.After(startDate)
}
