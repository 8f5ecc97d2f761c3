package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"go-swmon/internal/models"
	"go-swmon/internal/poller"
	"go-swmon/internal/portname"
	"go-swmon/internal/transport"

	"github.com/gofiber/fiber/v2"
)

// SwitchService is the query side used by the routes.
type SwitchService interface {
	GetPorts(ctx context.Context, host string) (models.PortsResult, error)
	GetPortMac(ctx context.Context, host, portID string) ([]models.MacEntry, error)
	Refresh(host string)
	Ping(ctx context.Context, host string) (models.PingResult, error)
	Switches() ([]models.SwitchView, error)
	CachedHosts() int
}

// InventoryStore is the writable switch inventory.
type InventoryStore interface {
	List() ([]models.Switch, error)
	Add(sw models.Switch) error
	Delete(host string) error
	Replace(switches []models.Switch) error
}

// inventoryEntry is one element of an inventory upload. The community is
// accepted here but never rendered back.
type inventoryEntry struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Location  string `json:"location"`
	Model     string `json:"model"`
	Community string `json:"community"`
}

func SetupRoutes(app *fiber.App, svc SwitchService, inv InventoryStore) {
	app.Get("/", func(c *fiber.Ctx) error {
		views, err := svc.Switches()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Render("index", fiber.Map{
			"Switches": views,
		})
	})

	// Port grid of one switch, polled or cached.
	app.Get("/switch/:host", func(c *fiber.Ctx) error {
		host := c.Params("host")
		res, err := svc.GetPorts(c.UserContext(), host)
		if err != nil {
			return c.Status(errorStatus(err)).Render("switch", fiber.Map{
				"Host":  host,
				"Error": err.Error(),
			})
		}

		type PortView struct {
			models.PortRecord
			Label string
		}
		ports := make([]PortView, 0, len(res.Ports))
		for _, p := range res.Ports {
			ports = append(ports, PortView{PortRecord: p, Label: portname.Label(p.ID)})
		}
		return c.Render("switch", fiber.Map{
			"Host":   host,
			"Result": res,
			"Ports":  ports,
		})
	})

	// Dashboard refresh button
	app.Post("/switch/:host/refresh", func(c *fiber.Ctx) error {
		svc.Refresh(c.Params("host"))
		return c.Redirect("/")
	})

	// Admin form
	app.Get("/admin", func(c *fiber.Ctx) error {
		switches, err := inv.List()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Render("admin", fiber.Map{
			"Switches": switches,
		})
	})

	// Handle form submit
	app.Post("/admin/add", func(c *fiber.Ctx) error {
		s := models.Switch{
			Name:      c.FormValue("name"),
			Host:      c.FormValue("host"),
			Location:  c.FormValue("location"),
			Model:     c.FormValue("model"),
			Community: c.FormValue("community"),
		}
		if err := inv.Add(s); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Redirect("/admin")
	})

	// Delete a switch
	app.Post("/admin/delete/:host", func(c *fiber.Ctx) error {
		host := c.Params("host")
		if err := inv.Delete(host); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		svc.Refresh(host)
		return c.Redirect("/admin")
	})

	api := app.Group("/api/switches")

	api.Get("/list/inventory", func(c *fiber.Ctx) error {
		switches, err := inv.List()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(switches)
	})

	api.Post("/list/inventory", func(c *fiber.Ctx) error {
		var entries []inventoryEntry
		if err := c.BodyParser(&entries); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expected a JSON list of switches"})
		}
		previous, err := inv.List()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		dropped := make(map[string]models.Switch, len(previous))
		for _, sw := range previous {
			dropped[sw.Host] = sw
		}

		switches := make([]models.Switch, 0, len(entries))
		for _, e := range entries {
			host := strings.TrimSpace(e.Host)
			sw := models.Switch{
				Name:      e.Name,
				Host:      host,
				Location:  e.Location,
				Model:     e.Model,
				Community: e.Community,
			}
			// Listings omit the community, so an upload without one keeps the stored value.
			if sw.Community == "" {
				sw.Community = dropped[host].Community
			}
			switches = append(switches, sw)
		}
		if err := inv.Replace(switches); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		for _, sw := range switches {
			delete(dropped, sw.Host)
		}
		for host := range dropped {
			svc.Refresh(host)
		}
		log.Printf("[web] inventory replaced with %d switches (%d removed)", len(switches), len(dropped))
		return c.JSON(fiber.Map{"message": fmt.Sprintf("Saved %d switches", len(switches))})
	})

	api.Get("/", func(c *fiber.Ctx) error {
		views, err := svc.Switches()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(views)
	})

	api.Get("/:host/ports", func(c *fiber.Ctx) error {
		res, err := svc.GetPorts(c.UserContext(), c.Params("host"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(res)
	})

	api.Get("/:host/ports/:port/mac", func(c *fiber.Ctx) error {
		port, err := url.PathUnescape(c.Params("port"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad port id"})
		}
		macs, err := svc.GetPortMac(c.UserContext(), c.Params("host"), port)
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(fiber.Map{"macTable": macs})
	})

	api.Post("/:host/refresh", func(c *fiber.Ctx) error {
		host := c.Params("host")
		svc.Refresh(host)
		return c.JSON(fiber.Map{"message": fmt.Sprintf("Cache cleared for %s, next request will poll live", host)})
	})

	api.Get("/:host/ping", func(c *fiber.Ctx) error {
		res, err := svc.Ping(c.UserContext(), c.Params("host"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(res)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"cachedHosts": svc.CachedHosts(),
		})
	})
}

// errorStatus maps query errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, poller.ErrUnknownDevice):
		return fiber.StatusNotFound
	case errors.Is(err, poller.ErrInvalidPort), errors.Is(err, transport.ErrCommandRejected):
		return fiber.StatusBadRequest
	case errors.Is(err, transport.ErrAuthFailed):
		return fiber.StatusUnauthorized
	case errors.Is(err, transport.ErrTimeout):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}

func sendError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	switch status {
	case fiber.StatusNotFound:
		msg = fmt.Sprintf("Switch %s not in inventory", c.Params("host"))
	case fiber.StatusUnauthorized:
		msg = "SSH authentication failed, check credentials"
	case fiber.StatusGatewayTimeout:
		msg = fmt.Sprintf("Timeout connecting to %s", c.Params("host"))
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("[web] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": strings.TrimSpace(msg)})
}
