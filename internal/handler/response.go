package handler

import (
	"strings"
	"time"

	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Response is the success envelope of every JSON endpoint.
type Response struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message,omitempty"`
	Data       interface{}            `json:"data,omitempty"`
	Pagination *repository.Pagination `json:"pagination,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool               `json:"success"`
	Error   *apperror.AppError `json:"error"`
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Response{Success: true, Data: data})
}

func created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Message: message, Data: data})
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(Response{Success: true, Message: msg})
}

func paginated(c *fiber.Ctx, data interface{}, pagination repository.Pagination) error {
	return c.JSON(Response{Success: true, Data: data, Pagination: &pagination})
}

// ErrorHandler renders every error returned by a handler or middleware.
// Coded errors keep their status; anything unexpected is logged and hidden.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, found := apperror.As(err); found {
			return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
		}

		if fe, found := err.(*fiber.Error); found {
			code := strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", "_"))
			if code == "" {
				code = "HTTP_ERROR"
			}
			return c.Status(fe.Code).JSON(ErrorResponse{Error: apperror.New(fe.Code, code, fe.Message)})
		}

		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: apperror.ErrInternal})
	}
}

func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.ErrInvalidID.WithDetails(name)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.ErrInvalidJSON
	}
	return nil
}

func pageFrom(c *fiber.Ctx) repository.PageRequest {
	return repository.PageRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", repository.DefaultPageSize),
	}.Normalize()
}

func queryID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.ErrInvalidID.WithDetails(key)
	}
	return &id, nil
}

// queryDate accepts YYYY-MM-DD or RFC 3339. A bare date used as an upper
// bound covers the whole day.
func queryDate(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperror.Validation(map[string]string{key: "must be YYYY-MM-DD or RFC 3339"})
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
