package calendar

import (
	"github.com/labstack/echo/v4"

	"resource-scheduler/core/cache"
	"resource-scheduler/core/crypto"
	"resource-scheduler/core/database"
	"resource-scheduler/core/middleware"
	"resource-scheduler/modules/calendar/controller"
	"resource-scheduler/modules/calendar/provider"
	"resource-scheduler/modules/calendar/repository"
	"resource-scheduler/modules/calendar/router"
	"resource-scheduler/modules/calendar/service"
)

// Init wires the calendar module and registers its routes. The returned
// service is also consumed by the background task handlers.
func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, cipher *crypto.Cipher) service.CalendarService {
	repo := repository.NewCalendarRepository(db)
	svc := service.NewCalendarService(repo, c, cipher, provider.ForName)
	ctrl := controller.NewCalendarController(svc)

	mw := middleware.NewMiddleware()
	router.NewCalendarRouter(ctrl).Setup(e, mw)

	return svc
}
