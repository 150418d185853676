package app

import (
	"github.com/mbolis/survey-tally/config"
	"github.com/mbolis/survey-tally/database"
)

type App struct {
	*database.Store
	config.Config
}
