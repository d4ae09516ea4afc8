package users

import (
	"github.com/mag8888/vital-sub000/partner"
)

// Package-level engine handle, set once at startup. Handlers are free
// functions registered on the router, matching the rest of the API.
var engine *partner.Engine

var botUsername string

func Setup(e *partner.Engine, bot string) {
	engine = e
	botUsername = bot
}
