package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	c "github.com/quesurifn/whatsup-calendar-server/calendar"
	t "github.com/quesurifn/whatsup-calendar-server/types"
	"go.uber.org/zap"
)

type Handlers struct {
	Logger   *zap.Logger
	Calendar *c.Calendar
	Info     t.Info

	// Filename is advertised in the Content-Disposition of the feed.
	Filename string
	// Gatherer backs /metrics. The route is not registered when nil.
	Gatherer prometheus.Gatherer
}

// Register mounts the routes on app.
func (h Handlers) Register(app *fiber.App) {
	app.Get("/", h.RootHandler)
	app.Get("/calendar.ics", h.CalendarHandler)

	if h.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}
}
