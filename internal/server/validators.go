package server

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	orderdomain "github.com/smallbiznis/eventory/internal/order/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
)

var registerValidatorsOnce sync.Once

// registerValidators installs the custom binding tags on gin's validator.
// Field names in errors follow the json or form tag of the request struct.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(tagName)
		_ = v.RegisterValidation("iso2", validateISO2)
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("order_status", validateOrderStatus)
		_ = v.RegisterValidation("sort_order", validateSortOrder)
	})
}

func tagName(field reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

func validateISO2(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != 2 {
		return false
	}
	for _, r := range value {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func validateRole(fl validator.FieldLevel) bool {
	switch strings.ToUpper(fl.Field().String()) {
	case platformctx.RoleAdmin, platformctx.RoleLogistics, platformctx.RoleClient:
		return true
	default:
		return false
	}
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	return orderdomain.ValidStatus(strings.ToUpper(fl.Field().String()))
}

func validateSortOrder(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "asc", "desc":
		return true
	default:
		return false
	}
}
