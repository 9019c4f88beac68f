package router

import (
	"github.com/labstack/echo/v4"

	"resource-scheduler/core/middleware"
	"resource-scheduler/modules/calendar/controller"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		controller: controller,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	// The provider redirects the browser here; no auth header is available.
	v1.GET("/public/calendar/callback", r.controller.Callback)

	calendarRoutes := v1.Group("/private/calendar")
	calendarRoutes.Use(mw.AuthMiddleware())

	// Connections
	calendarRoutes.GET("/connect/:provider", r.controller.Connect)
	calendarRoutes.GET("/connections", r.controller.GetConnections)
	calendarRoutes.DELETE("/connections/:provider", r.controller.Disconnect)

	// Events
	calendarRoutes.POST("/events", r.controller.CreateEvent)
	calendarRoutes.DELETE("/events/:id", r.controller.DeleteEvent)
}
