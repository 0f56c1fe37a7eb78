package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/entity-registry/entity_registry/internal/entity"
)

// RegisterEntityRoutes wires the two-phase registration endpoints. POST
// initiates code delivery, PUT confirms the code and creates the entity; any
// other method on the path gets fiber's 405.
func RegisterEntityRoutes(r fiber.Router, h *entity.Handler) {
	r.Post("/entities", h.Initiate)
	r.Put("/entities", h.Confirm)
}
