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

// TrainerHandler covers the trainer surface: the personal dashboard, the
// trainer's assigned classes, and per-class attendee rosters.
type TrainerHandler struct {
	classes  *repository.ClassRepo
	bookings *repository.BookingRepo
	stats    *repository.StatsRepo
}

func NewTrainerHandler(cl *repository.ClassRepo, b *repository.BookingRepo, s *repository.StatsRepo) *TrainerHandler {
	return &TrainerHandler{classes: cl, bookings: b, stats: s}
}

// Dashboard returns the caller's booking count, distinct client count and
// approximate earnings across their assigned classes.
func (h *TrainerHandler) Dashboard(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	dash, err := h.stats.TrainerDashboard(ctx, uid)
	if err != nil {
		log.Printf("trainer: load dashboard failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, dash)
}

// Classes lists the caller's assigned classes with attendee counts,
// ordered by day of week then start time.
func (h *TrainerHandler) Classes(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	classes, err := h.classes.ListByTrainer(ctx, uid)
	if err != nil {
		log.Printf("trainer: list classes failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, classes)
}

// Attendees returns the booking roster for one of the caller's classes.
// Asking for a class assigned to a different trainer is a 403.
func (h *TrainerHandler) Attendees(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	classID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || classID == 0 {
		return fail(c, http.StatusBadRequest, "invalid class id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	attendees, err := h.bookings.ListAttendeesForTrainer(ctx, classID, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClassNotFound):
			return fail(c, http.StatusNotFound, "class not found")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "not your class")
		}
		log.Printf("trainer: list attendees failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, attendees)
}
