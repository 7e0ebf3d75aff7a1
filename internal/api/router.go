package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"timetracker/internal/constants"
	"timetracker/internal/metrics"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	SecretKey string
	Users     UserLoader
	Reports   *ReportHandlers
}

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r chi.Router, deps ApiDependencies) {
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/health", HealthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.SecretKey, deps.Users))

		r.Get("/api/user/profile", GetUserProfile)

		// --- Отчеты: администратор видит все записи, пользователь только свои ---
		r.Get("/api/reports/monthly-excel", deps.Reports.MonthlyExcel)
		r.Get("/api/reports/project-participants", deps.Reports.ProjectParticipants)
		r.Get("/api/worklogs/export", deps.Reports.ExportWorkLogs)

		// --- Маршруты для админов ---
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(RoleMiddleware(constants.ROLE_ADMIN))
			r.Post("/reports/monthly-excel/send", deps.Reports.SendMonthlyExcel)
		})
	})
}
