package dto

import (
	"fmt"
	"paradise/internal/domains/booking/model"
	"paradise/shared"
	"paradise/shared/constant"
	"paradise/shared/timezone"
	"time"
)

type CreateBookingRequest struct {
	GuestName   string `json:"guest_name"   validate:"required,max=100"`
	GuestPhone  string `json:"guest_phone"  validate:"required,max=30"`
	StartDate   string `json:"start_date"   validate:"required"`
	EndDate     string `json:"end_date"     validate:"required"`
	BookingType string `json:"booking_type" validate:"required"`
}

func (c *CreateBookingRequest) ToModel() (model.Booking, error) {
	startDate, err := time.Parse(constant.DateOnlyFormat, c.StartDate)
	if err != nil {
		return model.Booking{}, fmt.Errorf("start_date must be formatted as YYYY-MM-DD: %w", err)
	}

	endDate, err := time.Parse(constant.DateOnlyFormat, c.EndDate)
	if err != nil {
		return model.Booking{}, fmt.Errorf("end_date must be formatted as YYYY-MM-DD: %w", err)
	}

	bookingType, known := model.ParseBookingType(c.BookingType)
	if !known {
		return model.Booking{}, fmt.Errorf("unknown booking_type %q", c.BookingType)
	}

	price, _ := model.Quote(bookingType, startDate, endDate)

	// created_at belongs to the ledger; the database stamps it on insert.
	return model.Booking{
		GuestName:   c.GuestName,
		GuestPhone:  c.GuestPhone,
		StartDate:   startDate,
		EndDate:     endDate,
		BookingType: bookingType,
		Price:       price,
	}, nil
}

type CreateBookingResponse struct {
	ID          int64  `json:"id"`
	GuestName   string `json:"guest_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	BookingType string `json:"booking_type"`
	Price       int64  `json:"price"`
	NumDays     int64  `json:"num_days"`
}

func (r *CreateBookingResponse) FromModel(mod model.Booking, numDays int64) {
	r.ID = mod.ID
	r.GuestName = mod.GuestName
	r.StartDate = mod.StartDate.Format(constant.DateOnlyFormat)
	r.EndDate = mod.EndDate.Format(constant.DateOnlyFormat)
	r.BookingType = string(mod.BookingType)
	r.Price = mod.Price
	r.NumDays = numDays
}

type AvailabilityRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"   validate:"required"`
}

func (a *AvailabilityRequest) ParseDates() (startDate, endDate time.Time, err error) {
	startDate, err = time.Parse(constant.DateOnlyFormat, a.StartDate)
	if err != nil {
		return startDate, endDate, fmt.Errorf("start_date must be formatted as YYYY-MM-DD: %w", err)
	}

	endDate, err = time.Parse(constant.DateOnlyFormat, a.EndDate)
	if err != nil {
		return startDate, endDate, fmt.Errorf("end_date must be formatted as YYYY-MM-DD: %w", err)
	}

	return startDate, endDate, nil
}

// ConflictSummary is the shape shown to a guest whose requested range is
// taken. Phone numbers stay private.
type ConflictSummary struct {
	ID          int64  `json:"id"`
	GuestName   string `json:"guest_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	BookingType string `json:"booking_type"`
}

func (c *ConflictSummary) FromModel(mod model.Booking) {
	c.ID = mod.ID
	c.GuestName = mod.GuestName
	c.StartDate = mod.StartDate.Format(constant.DateOnlyFormat)
	c.EndDate = mod.EndDate.Format(constant.DateOnlyFormat)
	c.BookingType = string(mod.BookingType)
}

type AvailabilityResponse struct {
	Available bool              `json:"available"`
	Conflicts []ConflictSummary `json:"conflicts"`
}

func (r *AvailabilityResponse) FromModels(models []model.Booking) {
	r.Available = len(models) == 0

	r.Conflicts = make([]ConflictSummary, len(models))
	for i, mod := range models {
		r.Conflicts[i].FromModel(mod)
	}
}

type BookingResponse struct {
	ID          int64  `json:"id"`
	GuestName   string `json:"guest_name"`
	GuestPhone  string `json:"guest_phone"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	BookingType string `json:"booking_type"`
	Price       int64  `json:"price"`
	CreatedAt   string `json:"created_at"`
}

func (r *BookingResponse) FromModel(mod model.Booking) {
	r.ID = mod.ID
	r.GuestName = mod.GuestName
	r.GuestPhone = mod.GuestPhone
	r.StartDate = mod.StartDate.Format(constant.DateOnlyFormat)
	r.EndDate = mod.EndDate.Format(constant.DateOnlyFormat)
	r.BookingType = string(mod.BookingType)
	r.Price = mod.Price
	r.CreatedAt = timezone.Format(mod.CreatedAt, constant.DateFormat)
}

type GetBookingsResponse struct {
	Bookings     []BookingResponse `json:"bookings"`
	TotalPage    int               `json:"total_page"`
	TotalData    int               `json:"total_data"`
	TotalRevenue int64             `json:"total_revenue"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int, totalRevenue int64) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)
	r.TotalRevenue = totalRevenue

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// BookingCreatedEvent is the payload published after a booking is committed.
type BookingCreatedEvent struct {
	ID          int64  `json:"id"`
	GuestName   string `json:"guest_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	BookingType string `json:"booking_type"`
	Price       int64  `json:"price"`
}

func (e *BookingCreatedEvent) FromModel(mod model.Booking) {
	e.ID = mod.ID
	e.GuestName = mod.GuestName
	e.StartDate = mod.StartDate.Format(constant.DateOnlyFormat)
	e.EndDate = mod.EndDate.Format(constant.DateOnlyFormat)
	e.BookingType = string(mod.BookingType)
	e.Price = mod.Price
}
