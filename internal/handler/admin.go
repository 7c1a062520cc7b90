package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymdesk/gym-booking-api/internal/model"
	"github.com/gymdesk/gym-booking-api/internal/repository"
)

// AdminHandler covers the admin surface: the dashboard, member management
// (including the pending approval queue), and class/program administration.
type AdminHandler struct {
	accounts *repository.AccountRepo
	classes  *repository.ClassRepo
	programs *repository.ProgramRepo
	stats    *repository.StatsRepo
}

func NewAdminHandler(a *repository.AccountRepo, cl *repository.ClassRepo, p *repository.ProgramRepo, s *repository.StatsRepo) *AdminHandler {
	return &AdminHandler{accounts: a, classes: cl, programs: p, stats: s}
}

// Stats returns the dashboard aggregates: member, class and booking counts,
// approximate revenue, and the five most recent members and bookings.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	stats, err := h.stats.AdminStats(ctx)
	if err != nil {
		log.Printf("admin: load stats failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, stats)
}

// Members lists all approved member accounts, newest first.
func (h *AdminHandler) Members(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	members, err := h.accounts.ListMembers(ctx)
	if err != nil {
		log.Printf("admin: list members failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, toAccountParts(members))
}

// PendingMembers lists member accounts awaiting an approval decision.
func (h *AdminHandler) PendingMembers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	members, err := h.accounts.ListPendingMembers(ctx)
	if err != nil {
		log.Printf("admin: list pending members failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, toAccountParts(members))
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateMemberStatus approves or rejects a pending member. Only the
// pending->active and pending->rejected transitions are allowed; anything
// else is a 400, and ids that do not name a pending member are a 404.
func (h *AdminHandler) UpdateMemberStatus(c echo.Context) error {
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || memberID == 0 {
		return fail(c, http.StatusBadRequest, "invalid member id")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if req.Status != model.StatusActive && req.Status != model.StatusRejected {
		return fail(c, http.StatusBadRequest, "status must be active or rejected")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.accounts.UpdateMemberStatus(ctx, memberID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "pending member not found")
		}
		log.Printf("admin: update member status failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, echo.Map{"id": memberID, "status": req.Status})
}

// DeleteMember removes a member account along with its bookings.
func (h *AdminHandler) DeleteMember(c echo.Context) error {
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || memberID == 0 {
		return fail(c, http.StatusBadRequest, "invalid member id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.accounts.DeleteMember(ctx, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "member not found")
		}
		log.Printf("admin: delete member failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "member deleted"})
}

// Trainers lists all trainer accounts, used to populate the class form's
// trainer picker.
func (h *AdminHandler) Trainers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trainers, err := h.accounts.ListTrainers(ctx)
	if err != nil {
		log.Printf("admin: list trainers failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, toAccountParts(trainers))
}

// Programs lists the program catalog.
func (h *AdminHandler) Programs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	programs, err := h.programs.ListAll(ctx)
	if err != nil {
		log.Printf("admin: list programs failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, programs)
}

// Classes lists every class with trainer and program names, same shape as
// the member schedule.
func (h *AdminHandler) Classes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	classes, err := h.classes.ListAll(ctx)
	if err != nil {
		log.Printf("admin: list classes failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, classes)
}

type classReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ProgramID   *uint64 `json:"program_id"`
	TrainerID   *uint64 `json:"trainer_id"`
	DayOfWeek   uint8   `json:"day_of_week"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Capacity    uint32  `json:"capacity"`
	IsActive    *bool   `json:"is_active"`
}

func (req *classReq) toParams() (repository.ClassParams, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return repository.ClassParams{}, "name required"
	}
	if req.DayOfWeek > 6 {
		return repository.ClassParams{}, "day_of_week must be 0-6"
	}
	if req.StartTime == "" || req.EndTime == "" {
		return repository.ClassParams{}, "start_time/end_time required"
	}
	if req.Capacity == 0 {
		return repository.ClassParams{}, "capacity must be positive"
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return repository.ClassParams{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		ProgramID:   req.ProgramID,
		TrainerID:   req.TrainerID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		IsActive:    active,
	}, ""
}

// CreateClass adds a class to the weekly schedule.
func (h *AdminHandler) CreateClass(c echo.Context) error {
	var req classReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	params, msg := req.toParams()
	if msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	class, err := h.classes.Create(ctx, params)
	if err != nil {
		log.Printf("admin: create class failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusCreated, class)
}

// UpdateClass overwrites a class's schedule fields. Shrinking capacity
// below the current booking count is allowed; existing bookings stand and
// no new ones fit until cancellations bring the count back down.
func (h *AdminHandler) UpdateClass(c echo.Context) error {
	classID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || classID == 0 {
		return fail(c, http.StatusBadRequest, "invalid class id")
	}
	var req classReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	params, msg := req.toParams()
	if msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	class, err := h.classes.Update(ctx, classID, params)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return fail(c, http.StatusNotFound, "class not found")
		}
		log.Printf("admin: update class failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, class)
}

// DeleteClass removes a class; its bookings are removed with it.
func (h *AdminHandler) DeleteClass(c echo.Context) error {
	classID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || classID == 0 {
		return fail(c, http.StatusBadRequest, "invalid class id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.classes.Delete(ctx, classID); err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return fail(c, http.StatusNotFound, "class not found")
		}
		log.Printf("admin: delete class failed: %v", err)
		return failServer(c)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "class deleted"})
}

func toAccountParts(accounts []model.Account) []accountPart {
	out := make([]accountPart, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountPart(a))
	}
	return out
}
