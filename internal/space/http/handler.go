package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calmadrigal/space-reservation-backend/internal/pkg/request"
	"github.com/calmadrigal/space-reservation-backend/internal/pkg/response"
	"github.com/calmadrigal/space-reservation-backend/internal/pkg/storage"
	"github.com/calmadrigal/space-reservation-backend/internal/reservation"
	"github.com/calmadrigal/space-reservation-backend/internal/space"
)

// maxPhotoSize caps uploaded space photos at 10 MiB.
const maxPhotoSize = 10 << 20

type Handler struct {
	service    space.Service
	resService reservation.Service
	store      storage.Storage
	images     *storage.ImageProcessor
}

func NewHandler(service space.Service, resService reservation.Service, store storage.Storage) *Handler {
	return &Handler{
		service:    service,
		resService: resService,
		store:      store,
		images:     storage.NewImageProcessor(),
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListSpacesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	spaces, total, err := h.service.List(c.Request.Context(), space.Filter{
		ActiveOnly: req.ActiveOnly,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SpaceResponse, len(spaces))
	for i, s := range spaces {
		items[i] = NewSpaceResponse(s)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSpaceResponse(s))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s, err := h.service.Create(c.Request.Context(), space.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewSpaceResponse(s))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
		return
	}

	var req UpdateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s, err := h.service.Update(c.Request.Context(), uri.ID, space.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSpaceResponse(s))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Availability re-exposes the busy blocks of a space so calendar clients
// can query a single service.
func (h *Handler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	now := time.Now().UTC()
	start := now
	end := now.Add(30 * 24 * time.Hour)
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start: use ISO 8601 with timezone"})
			return
		}
		start = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end: use ISO 8601 with timezone"})
			return
		}
		end = t
	}

	blocks, err := h.resService.Busy(c.Request.Context(), s.ID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	if blocks == nil {
		blocks = make([]reservation.Block, 0)
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Space:  NewSpaceResponse(s),
		Start:  start.UTC(),
		End:    end.UTC(),
		Blocks: blocks,
	})
}

// UploadPhoto replaces the photo of a space. The image is normalized to
// a bounded JPEG before storage.
func (h *Handler) UploadPhoto(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
		return
	}

	// Fetch up front: rejects unknown spaces before any image work, and
	// remembers the current photo so the replaced file can be removed.
	prev, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo exceeds the maximum allowed size"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	processed, err := h.images.FitJPEG(file, 1600, 1200)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is not a valid image"})
		return
	}

	path := fmt.Sprintf("spaces/%s.jpg", uuid.NewString())
	if err := h.store.Save(c.Request.Context(), path, processed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo"})
		return
	}

	s, err := h.service.SetPhotoPath(c.Request.Context(), uri.ID, path)
	if err != nil {
		// The space row could not be updated; do not leave the file behind.
		_ = h.store.Delete(c.Request.Context(), path)
		response.Error(c, err)
		return
	}

	// The replaced photo is no longer referenced; remove its file.
	if prev.PhotoPath != "" && prev.PhotoPath != path {
		_ = h.store.Delete(c.Request.Context(), prev.PhotoPath)
	}

	c.JSON(http.StatusOK, NewSpaceResponse(s))
}

// Photo streams the stored photo of a space.
func (h *Handler) Photo(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if s.PhotoPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "space has no photo"})
		return
	}

	content, err := h.store.Get(c.Request.Context(), s.PhotoPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}
	defer content.Close()

	c.DataFromReader(http.StatusOK, -1, "image/jpeg", content, nil)
}
