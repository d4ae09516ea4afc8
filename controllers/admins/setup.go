package admins

import (
	"github.com/mag8888/vital-sub000/partner"
)

var engine *partner.Engine

func Setup(e *partner.Engine) {
	engine = e
}
