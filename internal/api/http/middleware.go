package http

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/service-portal/internal/api/http/handlers"
	"github.com/spec-kit/service-portal/internal/observability"
	apperrors "github.com/spec-kit/service-portal/pkg/util"
)

const msgInternal = "Something went wrong. Please try again later."

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware turns every error that reached it, and every panic, into the
// error page. Store details never reach the response.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				status, code, message := describeError(err)
				metrics.RecordError(observability.RouteLabel(c), c.Method(), code)
				if status >= fiber.StatusInternalServerError {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
				}
				if renderErr := handlers.RenderError(c, status, message); renderErr != nil {
					logger.Error("render error page", zap.Error(renderErr))
					_ = c.Status(status).SendString(message)
				}
				err = nil
			}
		}()
		return c.Next()
	}
}

func describeError(err error) (status int, code, message string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, apperrors.CodeInternal, msgInternal
		}
		return fiberErr.Code, "HTTP_" + strconv.Itoa(fiberErr.Code), fiberErr.Message
	}
	domainErr := apperrors.ToDomainError(err)
	if !domainErr.Recoverable() {
		return domainErr.HTTPStatus, domainErr.Code, msgInternal
	}
	return domainErr.HTTPStatus, domainErr.Code, domainErr.Message
}
