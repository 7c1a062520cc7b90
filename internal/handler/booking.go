package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymdesk/gym-booking-api/internal/repository"
)

// BookingHandler covers the member-facing surface: browsing the weekly
// schedule, booking a class, listing own bookings and cancelling.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Classes  *repository.ClassRepo
}

func NewBookingHandler(b *repository.BookingRepo, cl *repository.ClassRepo) *BookingHandler {
	return &BookingHandler{Bookings: b, Classes: cl}
}

// GetSchedule lists every class ordered by day of week and start time.
// Capacity and current booking counts are included so clients can grey
// out full classes before even trying to book.
func (h *BookingHandler) GetSchedule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	classes, err := h.Classes.ListAll(ctx)
	if err != nil {
		log.Printf("booking: list schedule failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, classes)
}

// BookClass books a slot in the class named by the path parameter for the
// calling member. The capacity check and the insert run inside one
// transaction holding a row lock on the class, so two members racing for
// the last slot cannot both win.
func (h *BookingHandler) BookClass(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	classID, err := strconv.ParseUint(c.Param("classId"), 10, 64)
	if err != nil || classID == 0 {
		return fail(c, http.StatusBadRequest, "invalid class id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	bookingID, err := h.Bookings.Create(ctx, uid, classID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClassNotFound):
			return fail(c, http.StatusNotFound, "class not found")
		case errors.Is(err, repository.ErrClassFull):
			return fail(c, http.StatusConflict, "class is full")
		case errors.Is(err, repository.ErrAlreadyBooked):
			return fail(c, http.StatusConflict, "already booked")
		}
		log.Printf("booking: create failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusCreated, echo.Map{
		"booking_id": bookingID,
		"class_id":   classID,
		"status":     "confirmed",
	})
}

// GetMyBookings lists the caller's bookings with class, trainer and
// schedule details, ordered by day of week then start time.
func (h *BookingHandler) GetMyBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		log.Printf("booking: list by user failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, list)
}

// CancelBooking deletes the caller's booking and frees the slot. Owning
// the booking is required; cancelling someone else's booking reports not
// found rather than leaking its existence.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	bookingID, err := strconv.ParseUint(c.Param("bookingId"), 10, 64)
	if err != nil || bookingID == 0 {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Bookings.Cancel(ctx, uid, bookingID); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		log.Printf("booking: cancel failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "booking cancelled"})
}
