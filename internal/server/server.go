package server

import (
	"github.com/lestrrat-go/jwx/v2/jwk"
	"waterme/internal/bot"
	"waterme/internal/database"
)

// Server is the operator-facing HTTP API: health, metrics, read-through
// controller views and the manual evaluation trigger.
type Server struct {
	DB                database.Database
	Bot               *bot.Bot
	Logger            logger
	AdminPasswordHash string
	AuthSecretKey     jwk.Key
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}
