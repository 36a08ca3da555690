package handlers

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/applaud-app/applaud/app/dto"
	"github.com/applaud-app/applaud/app/services"
	businessflow "github.com/applaud-app/applaud/business_flow"
	"github.com/applaud-app/applaud/utils"
	"github.com/gofiber/fiber/v3"
)

// sseKeepaliveInterval bounds how long a proxy sees an idle event stream
const sseKeepaliveInterval = 15 * time.Second

type CounterHandlerInterface interface {
	Home(c fiber.Ctx) error
	Increment(c fiber.Ctx) error
	Ping(c fiber.Ctx) error
	Events(c fiber.Ctx) error
}

type CounterHandler struct {
	flow        businessflow.CounterFlow
	broadcaster services.Broadcaster
}

func NewCounterHandler(flow businessflow.CounterFlow, broadcaster services.Broadcaster) CounterHandlerInterface {
	return &CounterHandler{flow: flow, broadcaster: broadcaster}
}

func (h *CounterHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *CounterHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Home returns the current counter value and pending job count
func (h *CounterHandler) Home(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.GetCounterStatus(ctx, metadata)
	if err != nil {
		log.Println("Get counter status failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load counter", "COUNTER_STATUS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Counter status retrieved", res)
}

// Increment enqueues one increment task; the response never waits for the worker
func (h *CounterHandler) Increment(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/increment")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.EnqueueIncrement(ctx, metadata)
	if err != nil {
		log.Println("Enqueue increment failed", err)
		if businessflow.IsEnqueueFailed(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Increment could not be queued", "QUEUE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enqueue increment", "ENQUEUE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusAccepted, res.Message, res)
}

// Ping is a plain health check; the payload shape is fixed by the public API
func (h *CounterHandler) Ping(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(dto.PingResponse{
		Message:   "Pong",
		Timestamp: utils.UTCNowRFC3339(),
	})
}

// Events streams counter updates to the client over Server-Sent Events.
// Only updates published after the subscription is delivered; there is no
// replay of earlier values.
func (h *CounterHandler) Events(c fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.broadcaster.Subscribe(utils.CounterStreamName)

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.broadcaster.Unsubscribe(sub)

		keepalive := time.NewTicker(sseKeepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Stream, msg.Payload); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return // client disconnected
				}
			case <-keepalive.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}

func (h *CounterHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx := context.WithValue(context.Background(), utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}
