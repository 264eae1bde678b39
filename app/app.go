package app

import (
	"database/sql"

	"github.com/mbolis/survey-admin/config"
	"github.com/mbolis/survey-admin/httpx"
	"github.com/mbolis/survey-admin/selection"
	"github.com/mbolis/survey-admin/session"
)

// App is shared by every request for the lifetime of the process.
type App struct {
	*sql.DB
	config.Config
	Client    *httpx.Client
	Session   *session.Manager
	Selection *selection.Cache
}
