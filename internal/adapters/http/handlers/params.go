package handlers

import (
	"errors"
	"strconv"

	"club-membership/internal/core/domain"
	"club-membership/internal/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// paramID parses a positive integer path parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

// inputError answers validation failures with 400; ok is false for any other error
func inputError(c *fiber.Ctx, err error) (bool, error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return true, response.ValidationError(c, err)
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return true, response.BadRequest(c, err.Error())
	}
	return false, nil
}
