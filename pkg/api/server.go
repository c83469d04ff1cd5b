package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/fleettrack/pkg/api/routes"
	"github.com/travigo/fleettrack/pkg/livemap"
	"github.com/travigo/fleettrack/pkg/playback"
)

func NewApp(registry *livemap.Registry, manager *playback.Manager) *fiber.App {
	// Route params and query values outlive the request as session keys and filters
	webApp := fiber.New(fiber.Config{
		Immutable: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.LiveRouter(group.Group("/live"), registry)
	routes.PlaybackRouter(group.Group("/playback"), manager)

	return webApp
}
