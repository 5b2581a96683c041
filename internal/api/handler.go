// Package api is the HTTP front-end of the simulator, built on fiber.
//
//	POST /api/v1/schedule/:algorithm   run one algorithm
//	POST /api/v1/compare               compare algorithms
//	GET  /api/v1/algorithms            list supported algorithms
//	GET  /metrics                      Prometheus exposition
package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/metrics"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/server"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

var log = slog.Default()

// AlgorithmInfo describes one supported algorithm
type AlgorithmInfo struct {
	Key           types.Algorithm `json:"key"`
	Name          string          `json:"name"`
	NeedsQuantum  bool            `json:"needs_quantum"`
	NeedsPriority bool            `json:"needs_priority"`
}

// SchedulerHandler serves the simulation endpoints
type SchedulerHandler interface {
	Schedule(c *fiber.Ctx) error
	Compare(c *fiber.Ctx) error
	Algorithms(c *fiber.Ctx) error
}

// SchedulerHandlerImpl implements SchedulerHandler on top of server.Service
type SchedulerHandlerImpl struct {
	svc *server.Service
}

// NewSchedulerHandlerImpl creates the handler
func NewSchedulerHandlerImpl(svc *server.Service) *SchedulerHandlerImpl {
	return &SchedulerHandlerImpl{svc: svc}
}

// Schedule runs the algorithm named in the path. The body is a
// server.SimulateRequest; its algorithm field is ignored.
func (h *SchedulerHandlerImpl) Schedule(c *fiber.Ctx) error {
	var req server.SimulateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request format: "+err.Error())
	}
	req.Algorithm = types.Algorithm(c.Params("algorithm"))

	doc, err := h.svc.Simulate(c.UserContext(), req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(doc)
}

// Compare runs a comparison
func (h *SchedulerHandlerImpl) Compare(c *fiber.Ctx) error {
	var req server.CompareRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request format: "+err.Error())
	}

	doc, err := h.svc.Compare(c.UserContext(), req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(doc)
}

// Algorithms lists the supported algorithms
func (h *SchedulerHandlerImpl) Algorithms(c *fiber.Ctx) error {
	out := make([]AlgorithmInfo, 0, len(types.Algorithms))
	for _, a := range types.Algorithms {
		out = append(out, AlgorithmInfo{
			Key:           a,
			Name:          a.DisplayName(),
			NeedsQuantum:  a.NeedsQuantum(),
			NeedsPriority: a.NeedsPriority(),
		})
	}
	return c.JSON(out)
}

func serviceError(err error) error {
	switch {
	case server.IsInvalidArgument(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	log.Error("simulation request failed", "error", err)
	return fiber.NewError(fiber.StatusInternalServerError, "can not process request")
}

// errorHandler renders every error as {"error": message}
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// NewApp wires the routes. A nil gatherer leaves /metrics out.
func NewApp(h SchedulerHandler, gatherer prometheus.Gatherer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "schedsim",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	api := app.Group("/api")
	v1 := api.Group("/v1")
	{
		v1.Post("/schedule/:algorithm", h.Schedule)
		v1.Post("/compare", h.Compare)
		v1.Get("/algorithms", h.Algorithms)
	}

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(gatherer)))
	}
	return app
}

// Serve listens on addr until ctx is cancelled, then shuts the app down
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API listening", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
