package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/homeserve/booking-core/internal/model"
	"github.com/homeserve/booking-core/internal/pagination"
	"github.com/homeserve/booking-core/internal/repository"
	"github.com/homeserve/booking-core/internal/workflow"
)

// Validator — адаптер go-playground/validator под echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

type Handlers struct {
	bookings    *workflow.BookingService
	assignments *workflow.AssignmentService
	catalog     repository.CatalogRepository
}

func NewHandlers(
	bookings *workflow.BookingService,
	assignments *workflow.AssignmentService,
	catalog repository.CatalogRepository,
) *Handlers {
	return &Handlers{bookings: bookings, assignments: assignments, catalog: catalog}
}

type createBookingRequest struct {
	ServiceID  string  `json:"service_id" validate:"required,uuid"`
	TotalPrice float64 `json:"total_price" validate:"required,gt=0"`
	Remarks    string  `json:"remarks" validate:"max=500"`
}

type bookingResponse struct {
	RequestID            string     `json:"request_id"`
	Status               string     `json:"status"`
	AssignedProfessional *string    `json:"assigned_professional"`
	TotalPrice           float64    `json:"total_price"`
	Remarks              string     `json:"remarks,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

func toBookingResponse(snap *workflow.BookingSnapshot) bookingResponse {
	resp := bookingResponse{
		RequestID:   snap.Request.ID.String(),
		Status:      string(snap.Request.Status),
		TotalPrice:  snap.Request.TotalPrice,
		Remarks:     snap.Request.Remarks,
		CreatedAt:   snap.Request.CreatedAt,
		CompletedAt: snap.Request.CompletedAt,
	}
	if snap.ProfessionalName != "" {
		name := snap.ProfessionalName
		resp.AssignedProfessional = &name
	}
	return resp
}

// POST /api/bookings
func (h *Handlers) CreateBooking(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var in createBookingRequest
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": "malformed request body"})
	}
	if err := c.Validate(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": err.Error()})
	}

	serviceID, err := uuid.Parse(in.ServiceID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": "invalid service id"})
	}

	snap, err := h.bookings.CreateRequest(c.Request().Context(), actor.UserID, workflow.BookingInput{
		ServiceID:  serviceID,
		TotalPrice: in.TotalPrice,
		Remarks:    in.Remarks,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, toBookingResponse(snap))
}

// GET /api/bookings/:id
func (h *Handlers) GetBooking(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": "invalid booking id"})
	}

	snap, err := h.bookings.GetRequest(c.Request().Context(), id, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	resp := echo.Map{"booking": toBookingResponse(snap)}
	if snap.Assignment != nil {
		resp["assignment"] = assignmentResponseOf(snap.Assignment)
	}
	return c.JSON(http.StatusOK, resp)
}

// DELETE /api/bookings/:id
func (h *Handlers) CancelBooking(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": "invalid booking id"})
	}

	req, err := h.bookings.CancelRequest(c.Request().Context(), id, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"request_id": req.ID.String(),
		"status":     string(req.Status),
	})
}

// GET /api/bookings
func (h *Handlers) ListBookings(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	page, size, limit, offset := paginationParams(c)
	requests, total, err := h.bookings.ListUserRequests(c.Request().Context(), actor.UserID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, pagination.NewPage(requests, page, size, total))
}

type eventResponse struct {
	EventType string    `json:"event_type"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	CreatedAt time.Time `json:"created_at"`
}

// GET /api/bookings/:id/events
func (h *Handlers) ListBookingEvents(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": "invalid booking id"})
	}

	events, err := h.bookings.RequestHistory(c.Request().Context(), id, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventResponse{
			EventType: string(ev.EventType),
			OldStatus: ev.OldStatus,
			NewStatus: ev.NewStatus,
			CreatedAt: ev.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected completed"`
}

type assignmentResponse struct {
	AssignmentID string     `json:"assignment_id"`
	RequestID    string     `json:"request_id"`
	Status       string     `json:"status"`
	AssignedAt   time.Time  `json:"assigned_at"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func assignmentResponseOf(asg *model.AssignRequest) assignmentResponse {
	return assignmentResponse{
		AssignmentID: asg.ID.String(),
		RequestID:    asg.ServiceRequestID.String(),
		Status:       string(asg.Status),
		AssignedAt:   asg.AssignedAt,
		DecidedAt:    asg.DecidedAt,
		CompletedAt:  asg.CompletedAt,
	}
}

// POST /api/assignments/:id/decision
func (h *Handlers) ApplyDecision(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok || actor.ProfessionalID == uuid.Nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "UNAUTHORIZED", "message": "professional identity required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": "invalid assignment id"})
	}

	var in decisionRequest
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": "malformed request body"})
	}
	if err := c.Validate(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "VALIDATION", "message": err.Error()})
	}

	asg, err := h.assignments.ApplyDecision(
		c.Request().Context(),
		id,
		actor.ProfessionalID,
		model.AssignmentStatus(in.Decision),
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, assignmentResponseOf(asg))
}

// GET /api/assignments
func (h *Handlers) ListAssignments(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok || actor.ProfessionalID == uuid.Nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "UNAUTHORIZED", "message": "professional identity required"})
	}

	page, size, limit, offset := paginationParams(c)
	assignments, total, err := h.assignments.ListProfessionalAssignments(c.Request().Context(), actor.ProfessionalID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, pagination.NewPage(assignments, page, size, total))
}

// GET /api/catalog/locations
func (h *Handlers) ListLocations(c echo.Context) error {
	locations, err := h.catalog.ListLocations(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, locations)
}

// GET /api/catalog/categories
func (h *Handlers) ListCategories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func paginationParams(c echo.Context) (page, size, limit, offset int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("page_size"))
	return pagination.Normalize(page, size)
}
