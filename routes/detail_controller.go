package routes

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/survey-admin/app"
	"github.com/mbolis/survey-admin/httpx"
	"github.com/mbolis/survey-admin/model"
)

type detailResponse struct {
	Source string    `json:"source"`
	Data   model.Row `json:"data"`
}

const (
	sourceCache   = "cache"
	sourceBackend = "backend"
)

// urlParam decodes a path parameter once. chi routes on RawPath when the
// request has one, so only then is the parameter still escaped.
func urlParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func UserDetail(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sysId := urlParam(r, "sysId")
		if u, ok := app.Selection.GetUser(sysId); ok {
			render.JSON(w, r, detailResponse{sourceCache, u})
			return
		}

		payload, err := app.Client.Get(r.Context(), "/api/admin/users/"+url.PathEscape(sysId), httpx.RequestOptions{})
		if err != nil {
			httpx.LogUpstreamError(w, r, "user_detail.fetch", err)
			return
		}
		u := payload.Object()
		if u == nil {
			httpx.LogNotFound(w, "user_detail", sysId)
			return
		}
		app.Selection.SetUser(u)

		render.JSON(w, r, detailResponse{sourceBackend, u})
	}
}

func SurveyDetail(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := urlParam(r, "id")
		if s, ok := app.Selection.GetSurvey(surveyId); ok {
			render.JSON(w, r, detailResponse{sourceCache, s})
			return
		}

		payload, err := app.Client.Get(r.Context(), "/api/admin/surveys/"+url.PathEscape(surveyId), httpx.RequestOptions{})
		if err != nil {
			httpx.LogUpstreamError(w, r, "survey_detail.fetch", err)
			return
		}
		s := payload.Object()
		if s == nil {
			httpx.LogNotFound(w, "survey_detail", surveyId)
			return
		}
		app.Selection.SetSurvey(s)

		render.JSON(w, r, detailResponse{sourceBackend, s})
	}
}

// QuizDetail takes the composite "qrId|submittedAt" key. Quizzes have no
// single-item endpoint, so a cache miss refetches the submissions of qrId.
func QuizDetail(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := urlParam(r, "id")
		if q, ok := app.Selection.GetQuizByCompositeKey(key); ok {
			render.JSON(w, r, detailResponse{sourceCache, q})
			return
		}

		qrId, _, ok := model.SplitQuizKey(key)
		if !ok || qrId == "" {
			httpx.LogNotFound(w, "quiz_detail.key", key)
			return
		}

		payload, err := app.Client.Get(r.Context(), "/api/admin/quiz", httpx.RequestOptions{
			Params: map[string]any{"qrId": qrId},
		})
		if err != nil {
			httpx.LogUpstreamError(w, r, "quiz_detail.fetch", err)
			return
		}
		rows := payload.Rows()
		app.Selection.PrimeFromArray(rows)
		for _, row := range rows {
			if model.QuizKey(row) == key {
				app.Selection.SetQuiz(row)
			}
		}

		q, ok := app.Selection.GetQuizByCompositeKey(key)
		if !ok {
			httpx.LogNotFound(w, "quiz_detail", key)
			return
		}
		render.JSON(w, r, detailResponse{sourceBackend, q})
	}
}
