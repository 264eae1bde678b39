package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/survey-admin/app"
	"github.com/mbolis/survey-admin/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	base := strings.TrimSuffix(app.BasePath, "/")

	root := chi.NewRouter()
	root.Use(middlewares.RequestLog, middleware.Recoverer)

	if base == "" {
		dashboardRoutes(root, app, base)
		return root
	}

	root.Route(base, func(r chi.Router) {
		dashboardRoutes(r, app, base)
	})
	root.NotFound(redirect(base + "/"))
	return root
}

func dashboardRoutes(r chi.Router, app app.App, base string) {
	loginPath := base + "/login"
	landingPath := base + "/analytics"

	r.Use(middlewares.Guard(app.Session, middlewares.Paths{
		Login:   loginPath,
		Landing: landingPath,
	}))

	r.Get("/", redirect(landingPath))

	r.Get("/login", LoginPage(app))
	r.Post("/login", Login(app))
	r.Post("/logout", Logout(app, loginPath))

	r.Get("/analytics", Analytics(app))
	for _, page := range listPages {
		r.Get("/"+page.Name, List(app, page))
	}

	r.Get("/users/{sysId}", UserDetail(app))
	r.Get("/surveys/{id}", SurveyDetail(app))
	r.Get("/quiz/{id}", QuizDetail(app))

	r.NotFound(redirect(base + "/"))
}

func redirect(location string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("location", location)
		w.WriteHeader(http.StatusTemporaryRedirect)
	}
}
