package profile

import (
	"errors"
	"net/http"
	"strings"

	"authportal/internal/backend"
	"authportal/internal/gateway"
	"authportal/internal/shared/middleware"
	"authportal/internal/shared/utils/response"
	"authportal/internal/validation"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service       *Service
	maxUploadSize int64
}

func NewController(service *Service, maxUploadSize int64) *Controller {
	return &Controller{service: service, maxUploadSize: maxUploadSize}
}

func (c *Controller) GetProfile(ctx *gin.Context) {
	session, ok := middleware.CurrentSession(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Not signed in", nil, nil)
		return
	}

	view, err := c.service.Get(ctx.Request.Context(), ctx.Request, session.User)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load profile", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Profile retrieved successfully", view, nil)
}

func (c *Controller) UpdateProfile(ctx *gin.Context) {
	session, ok := middleware.CurrentSession(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Not signed in", nil, nil)
		return
	}

	var req validation.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	fieldErrs, err := c.service.Update(ctx.Request.Context(), ctx.Request, session.User, req)
	if err != nil {
		c.respondError(ctx, err, fieldErrs, "Failed to update profile")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Profile updated successfully", req, nil)
}

func (c *Controller) UploadImage(ctx *gin.Context) {
	session, ok := middleware.CurrentSession(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Not signed in", nil, nil)
		return
	}

	if c.maxUploadSize > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadSize)
	}
	header, err := ctx.FormFile("image")
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Image file is required", nil, err.Error())
		return
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "File must be an image", nil, nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Unable to read image", nil, nil)
		return
	}
	defer file.Close()

	imageURL, err := c.service.UploadImage(ctx.Request.Context(), ctx.Request, session.User, header.Filename, file)
	if err != nil {
		c.respondError(ctx, err, nil, "Failed to upload image")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Profile image updated", ImageResponse{ImageURL: imageURL}, nil)
}

func (c *Controller) respondError(ctx *gin.Context, err error, fieldErrs validation.FieldErrors, fallback string) {
	var beErr *backend.Error
	switch {
	case errors.Is(err, ErrValidation):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, fieldErrs)
	case errors.Is(err, ErrEmptyUpload):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Image file is required", nil, nil)
	case gateway.IsNoSession(err):
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Session expired", nil, nil)
	case errors.As(err, &beErr) && beErr.Status >= 400 && beErr.Status < 500:
		response.RespondJSON(ctx, "error", http.StatusBadRequest, beErr.Message, nil, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusBadGateway, fallback, nil, nil)
	}
}
