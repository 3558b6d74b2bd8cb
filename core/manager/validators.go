package manager

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	positionTag  = "position"
	positionText = "invalid position"
)

func init() {
	_ = core.Validate.RegisterValidation(positionTag, positionValidation)
	core.RegisterCustomTranslation(positionTag, positionText)
}

func positionValidation(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, p := range Positions {
		if p.Value == value {
			return true
		}
	}
	return false
}

// positionValue accepts a position value or its name, eg. "Deputy principal".
func positionValue(s string) string {
	s = core.CleanString(s)
	for _, p := range Positions {
		if strings.EqualFold(p.Value, s) || strings.EqualFold(p.Name, s) {
			return p.Value
		}
	}
	return s
}

func positionName(value string) string {
	for _, p := range Positions {
		if p.Value == value {
			return p.Name
		}
	}
	return value
}
