package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
	"github.com/travigo/fleettrack/pkg/livemap"
)

// EntityView is a tracked entity as shown in the operator tables
type EntityView struct {
	DeviceID         string               `json:"deviceId" groups:"basic,detailed"`
	Position         geo.Point            `json:"position" groups:"basic,detailed"`
	DisplayLatitude  string               `json:"displayLatitude" groups:"basic,detailed"`
	DisplayLongitude string               `json:"displayLongitude" groups:"basic,detailed"`
	Bearing          float64              `json:"bearing" groups:"detailed"`
	Variant          ctdf.StatusVariant   `json:"variant" groups:"basic,detailed"`
	Icon             ctdf.Icon            `json:"icon" groups:"basic,detailed"`
	Speed            float64              `json:"speed" groups:"basic,detailed"`
	Ignition         ctdf.IgnitionState   `json:"ignition" groups:"detailed"`
	Snapshot         ctdf.VehicleSnapshot `json:"snapshot" groups:"detailed"`
	Address          string               `json:"address,omitempty" groups:"basic,detailed"`
}

func LiveRouter(router fiber.Router, registry *livemap.Registry) {
	router.Get("/:screen/entities", func(c *fiber.Ctx) error {
		return listEntities(c, registry)
	})
	router.Get("/:screen/nearest", func(c *fiber.Ctx) error {
		return nearestEntity(c, registry)
	})
	router.Post("/:screen/select/:device", func(c *fiber.Ctx) error {
		return selectEntity(c, registry)
	})
	router.Post("/:screen/filter", func(c *fiber.Ctx) error {
		return filterEntities(c, registry)
	})
}

func getEngine(c *fiber.Ctx, registry *livemap.Registry) (*livemap.Engine, error) {
	engine, ok := registry.Get(c.Params("screen"))
	if !ok {
		c.Status(fiber.StatusNotFound)
		return nil, c.JSON(fiber.Map{
			"error": "Could not find screen matching identifier",
		})
	}
	return engine, nil
}

func listEntities(c *fiber.Ctx, registry *livemap.Registry) error {
	engine, err := getEngine(c, registry)
	if engine == nil {
		return err
	}

	entities := engine.Entities()

	var views []EntityView
	if err := copier.Copy(&views, &entities); err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not build entity views",
		})
	}

	if c.QueryBool("address") {
		geocodePool := pool.New().WithMaxGoroutines(8)
		for i := range views {
			view := &views[i]
			geocodePool.Go(func() {
				view.Address = engine.Geocoder.ReverseGeocode(c.UserContext(), view.Position)
			})
		}
		geocodePool.Wait()
	}

	group := c.Query("group", "basic")
	if group != "basic" && group != "detailed" {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "group must be basic or detailed",
		})
	}

	if views == nil {
		views = []EntityView{}
	}

	viewsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{group},
	}, views)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce entities",
		})
	}

	return c.JSON(viewsReduced)
}

func nearestEntity(c *fiber.Ctx, registry *livemap.Registry) error {
	engine, err := getEngine(c, registry)
	if engine == nil {
		return err
	}

	reference, ok := geo.ToPoint(c.Query("lat"), c.Query("lon"))
	if !ok {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "lat and lon must be a valid position",
		})
	}

	entity, distance, ok := engine.Nearest(reference)
	if !ok {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "No vehicles are being tracked",
		})
	}

	return c.JSON(fiber.Map{
		"deviceId": entity.DeviceID,
		"position": entity.Position,
		"distance": distance,
	})
}

func selectEntity(c *fiber.Ctx, registry *livemap.Registry) error {
	engine, err := getEngine(c, registry)
	if engine == nil {
		return err
	}

	event, err := engine.Select(c.UserContext(), c.Params("device"))
	if errors.Is(err, livemap.ErrEntityNotTracked) {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	} else if err != nil {
		log.Error().Err(err).Str("device", c.Params("device")).Msg("Failed to select vehicle")
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(event)
}

func filterEntities(c *fiber.Ctx, registry *livemap.Registry) error {
	engine, err := getEngine(c, registry)
	if engine == nil {
		return err
	}

	removed := engine.SetFilter(c.Query("q"))

	return c.JSON(fiber.Map{
		"filter":  engine.Filter(),
		"removed": removed,
	})
}
