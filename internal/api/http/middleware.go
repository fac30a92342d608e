package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-console/internal/guard"
	"github.com/spec-kit/taskboard-console/internal/observability"
	apperrors "github.com/spec-kit/taskboard-console/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
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

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				fields := append(sessionFields(c), zap.String("code", domainErr.Code), zap.String("path", c.Path()))
				switch {
				case domainErr.HTTPStatus >= 500:
					logger.Error("request failed", append(fields, zap.Error(domainErr))...)
				case domainErr.HTTPStatus == fiber.StatusUnauthorized || domainErr.HTTPStatus == fiber.StatusForbidden:
					logger.Info("request rejected", fields...)
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// sessionFields describes the session a guard admitted the request with.
// Requests that never passed a guard log as unguarded.
func sessionFields(c *fiber.Ctx) []zap.Field {
	snap, ok := guard.SnapshotFrom(c)
	if !ok {
		return []zap.Field{zap.String("session_state", "unguarded")}
	}
	return []zap.Field{
		zap.String("session_state", string(snap.State)),
		zap.String("subject_id", snap.Session.GetSubjectID()),
		zap.String("role", snap.Session.GetRole().String()),
	}
}
