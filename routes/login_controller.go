package routes

import (
	"net/http"
	"strings"

	"github.com/ajg/form"
	"github.com/go-chi/render"
	"github.com/mbolis/survey-admin/app"
	"github.com/mbolis/survey-admin/httpx"
	"github.com/mbolis/survey-admin/log"
)

type loginRequest struct {
	Key string `json:"key" form:"key"`
}

func LoginPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"session": app.Session.Snapshot(),
			"goto":    r.URL.Query().Get("goto"),
		})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := loginRequest{}
		var err error
		if render.GetRequestContentType(r) == render.ContentTypeForm {
			err = form.NewDecoder(r.Body).Decode(&body)
		} else {
			err = render.DecodeJSON(r.Body, &body)
		}
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "login.parse_body")
			return
		}

		key := strings.TrimSpace(body.Key)
		if key == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "login.key", "missing key")
			return
		}

		if !app.Session.LoginWithKey(r.Context(), key) {
			log.Info("login: key rejected")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]any{
				"status":  "error",
				"message": "Invalid key",
			})
			return
		}

		log.Info("login: key accepted")
		render.JSON(w, r, map[string]any{
			"status": "success",
		})
	}
}

func Logout(app app.App, loginPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app.Session.Logout(r.Context())
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
	}
}
