package http

import "github.com/gofiber/fiber/v2"

// FailHandler responde siempre con err usando el mapeo de errores de los handlers.
func FailHandler(err error, debug bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return responder{debug: debug}.fail(c, err)
	}
}
