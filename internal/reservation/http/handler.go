package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calmadrigal/space-reservation-backend/internal/auth"
	"github.com/calmadrigal/space-reservation-backend/internal/pkg/request"
	"github.com/calmadrigal/space-reservation-backend/internal/pkg/response"
	"github.com/calmadrigal/space-reservation-backend/internal/reservation"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

// parseTimeQuery parses an optional RFC3339 query parameter.
func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ": use ISO 8601 with timezone"})
		return nil, false
	}
	return &t, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.service.Create(c.Request.Context(), actor, reservation.CreateRequest{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		SpaceID:     req.SpaceID,
		Credential:  auth.Credential(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(res))
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	start, ok := parseTimeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseTimeQuery(c, "end")
	if !ok {
		return
	}

	var spaceID int64
	if v := c.Query("space"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
			return
		}
		spaceID = id
	}

	reservations, err := h.service.List(c.Request.Context(), actor, reservation.ListParams{
		Start:   start,
		End:     end,
		SpaceID: spaceID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// Admins see the full representation; everyone else gets the public
	// shape without creator identity or private details.
	if actor.IsAdmin() {
		items := make([]ReservationResponse, len(reservations))
		for i, r := range reservations {
			items[i] = NewReservationResponse(r)
		}
		c.JSON(http.StatusOK, items)
		return
	}

	items := make([]PublicReservationResponse, len(reservations))
	for i, r := range reservations {
		items[i] = NewPublicReservationResponse(r)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Mine(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	start, ok := parseTimeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseTimeQuery(c, "end")
	if !ok {
		return
	}

	reservations, err := h.service.Mine(c.Request.Context(), actor, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		items[i] = NewReservationResponse(r)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Busy(c *gin.Context) {
	var req BusyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	now := time.Now().UTC()
	start := now
	end := now.Add(30 * 24 * time.Hour)
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}

	blocks, err := h.service.Busy(c.Request.Context(), req.SpaceID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	if blocks == nil {
		blocks = make([]reservation.Block, 0)
	}

	c.JSON(http.StatusOK, BusyResponse{
		SpaceID: req.SpaceID,
		Start:   start.UTC(),
		End:     end.UTC(),
		Blocks:  blocks,
	})
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), actor, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.service.Update(c.Request.Context(), actor, uri.ID, reservation.UpdateRequest{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, func(actor auth.Actor, id int64, _ string) (*reservation.Reservation, error) {
		return h.service.Cancel(c.Request.Context(), actor, id)
	}, false)
}

func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, func(actor auth.Actor, id int64, note string) (*reservation.Reservation, error) {
		return h.service.Approve(c.Request.Context(), actor, id, note)
	}, true)
}

func (h *Handler) Reject(c *gin.Context) {
	h.transition(c, func(actor auth.Actor, id int64, note string) (*reservation.Reservation, error) {
		return h.service.Reject(c.Request.Context(), actor, id, note)
	}, true)
}

// transition factors the shared shape of the status-change endpoints.
func (h *Handler) transition(c *gin.Context, fn func(auth.Actor, int64, string) (*reservation.Reservation, error), withNote bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	var note string
	if withNote && c.Request.ContentLength > 0 {
		var req DecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		note = strings.TrimSpace(req.Note)
	}

	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := fn(actor, uri.ID, note)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

func (h *Handler) Report(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	start, ok := parseTimeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseTimeQuery(c, "end")
	if !ok {
		return
	}

	var spaceID int64
	if v := c.Query("space"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
			return
		}
		spaceID = id
	}

	var statuses []reservation.Status
	if v := c.Query("status"); v != "" && !strings.EqualFold(v, "all") {
		for _, raw := range strings.Split(v, ",") {
			s := reservation.Status(strings.ToUpper(strings.TrimSpace(raw)))
			if s.Valid() {
				statuses = append(statuses, s)
			}
		}
	}

	report, err := h.service.Report(c.Request.Context(), actor, reservation.ReportParams{
		Start:    start,
		End:      end,
		SpaceID:  spaceID,
		Statuses: statuses,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
