package routes

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
	"github.com/travigo/fleettrack/pkg/playback"
)

func PlaybackRouter(router fiber.Router, manager *playback.Manager) {
	router.Post("/:device/load", func(c *fiber.Ctx) error {
		return loadPlayback(c, manager)
	})
	router.Post("/:device/play", func(c *fiber.Ctx) error {
		return playPlayback(c, manager)
	})
	router.Post("/:device/pause", func(c *fiber.Ctx) error {
		return pausePlayback(c, manager)
	})
	router.Post("/:device/seek", func(c *fiber.Ctx) error {
		return seekPlayback(c, manager)
	})
	router.Post("/:device/speed", func(c *fiber.Ctx) error {
		return speedPlayback(c, manager)
	})
	router.Get("/:device", func(c *fiber.Ctx) error {
		return getPlayback(c, manager)
	})
	router.Get("/:device/path", func(c *fiber.Ctx) error {
		return getPlaybackPath(c, manager)
	})
	router.Delete("/:device", func(c *fiber.Ctx) error {
		manager.Close(c.Params("device"))
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func getSession(c *fiber.Ctx, manager *playback.Manager) (*playback.Session, error) {
	session, ok := manager.Get(c.Params("device"))
	if !ok {
		c.Status(fiber.StatusNotFound)
		return nil, c.JSON(fiber.Map{
			"error": "No playback loaded for this vehicle",
		})
	}
	return session, nil
}

func loadPlayback(c *fiber.Ctx, manager *playback.Manager) error {
	deviceID := c.Params("device")

	window, err := ctdf.ParseTimeWindow(c.Query("from"), c.Query("to"), c.Query("duration"))
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	session, err := manager.Load(c.UserContext(), deviceID, window)
	if err != nil {
		log.Error().Err(err).Str("device", deviceID).Msg("Failed to load playback")
		c.Status(fiber.StatusBadGateway)
		return c.JSON(fiber.Map{
			"error": "Could not fetch the track for this vehicle",
		})
	}

	return c.JSON(fiber.Map{
		"deviceId": session.DeviceID,
		"window":   session.Window.String(),
		"records":  len(session.Records),
		"points":   len(session.Points),
		"path":     len(session.Path),
		"status":   session.Controller.Status(),
	})
}

func playPlayback(c *fiber.Ctx, manager *playback.Manager) error {
	session, err := getSession(c, manager)
	if session == nil {
		return err
	}

	if err := session.Controller.Play(); errors.Is(err, playback.ErrEmptyPath) {
		c.Status(fiber.StatusConflict)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(session.Controller.Status())
}

func pausePlayback(c *fiber.Ctx, manager *playback.Manager) error {
	session, err := getSession(c, manager)
	if session == nil {
		return err
	}

	session.Controller.Pause()

	return c.JSON(session.Controller.Status())
}

func seekPlayback(c *fiber.Ctx, manager *playback.Manager) error {
	session, err := getSession(c, manager)
	if session == nil {
		return err
	}

	switch {
	case c.QueryBool("end"):
		session.Controller.SeekEnd()
	case c.Query("index") != "":
		index, err := strconv.Atoi(c.Query("index"))
		if err != nil {
			c.Status(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter index should be an integer",
			})
		}
		err = session.Controller.Seek(index)
		if err != nil {
			c.Status(fiber.StatusConflict)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	default:
		point, ok := geo.ToPoint(c.Query("lat"), c.Query("lon"))
		if !ok {
			c.Status(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Seek needs an index, end=true or a lat/lon position",
			})
		}
		if _, err := session.Controller.SeekNearest(point); err != nil {
			c.Status(fiber.StatusConflict)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return c.JSON(session.Controller.Status())
}

func speedPlayback(c *fiber.Ctx, manager *playback.Manager) error {
	session, err := getSession(c, manager)
	if session == nil {
		return err
	}

	multiplier, err := strconv.ParseFloat(c.Query("multiplier"), 64)
	if err == nil {
		err = session.Controller.SetSpeed(multiplier)
	}
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error":  playback.ErrInvalidSpeed.Error(),
			"speeds": session.Controller.Speeds(),
		})
	}

	return c.JSON(session.Controller.Status())
}

func getPlayback(c *fiber.Ctx, manager *playback.Manager) error {
	session, err := getSession(c, manager)
	if session == nil {
		return err
	}

	return c.JSON(session.Controller.Status())
}

func getPlaybackPath(c *fiber.Ctx, manager *playback.Manager) error {
	session, err := getSession(c, manager)
	if session == nil {
		return err
	}

	path := session.Path
	if path == nil {
		path = []ctdf.PlaybackPoint{}
	}

	pathReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{c.Query("group", "basic")},
	}, path)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce path",
		})
	}

	return c.JSON(pathReduced)
}
