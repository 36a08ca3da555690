package handlers

import (
	"context"
	"log"

	"github.com/applaud-app/applaud/app/dto"
	businessflow "github.com/applaud-app/applaud/business_flow"
	"github.com/applaud-app/applaud/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type TestimonialHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	AddComment(c fiber.Ctx) error
}

type TestimonialHandler struct {
	flow      businessflow.TestimonialFlow
	validator *validator.Validate
}

func NewTestimonialHandler(flow businessflow.TestimonialFlow) TestimonialHandlerInterface {
	return &TestimonialHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *TestimonialHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *TestimonialHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// List returns all testimonials newest first with their comments
func (h *TestimonialHandler) List(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/testimonials")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.ListTestimonials(ctx, metadata)
	if err != nil {
		log.Println("List testimonials failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list testimonials", "LIST_TESTIMONIALS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Testimonials retrieved", res)
}

// Create submits a new testimonial
func (h *TestimonialHandler) Create(c fiber.Ctx) error {
	var req dto.CreateTestimonialRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/testimonials")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.CreateTestimonial(ctx, &req, metadata)
	if err != nil {
		log.Println("Create testimonial failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save testimonial", "CREATE_TESTIMONIAL_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Testimonial added!", res)
}

// AddComment submits a comment on an existing testimonial
func (h *TestimonialHandler) AddComment(c fiber.Ctx) error {
	testimonialUUID := c.Params("uuid")

	var req dto.CreateCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/testimonials/:uuid/comments")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.AddComment(ctx, testimonialUUID, &req, metadata)
	if err != nil {
		if businessflow.IsTestimonialNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Testimonial not found", "TESTIMONIAL_NOT_FOUND", nil)
		}
		log.Println("Add comment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Comment could not be saved", "CREATE_COMMENT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Comment added!", res)
}

func (h *TestimonialHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx := context.WithValue(context.Background(), utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}
