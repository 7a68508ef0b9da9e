// Package validation envuelve go-playground/validator con las reglas propias de los leads.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/leads-api/internal/domain"
	"github.com/jhoicas/leads-api/internal/domain/entity"
)

// Validator valida DTOs y traduce los fallos a domain.ErrValidation.
type Validator struct {
	v *validator.Validate
}

// New registra las reglas:
//   - lead_status: el texto pertenece a la enumeración de estados.
//   - decimal.Decimal se valida como float64, así gte/lte funcionan sobre montos.
//   - los nombres de campo de los errores son los del JSON.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("lead_status", func(fl validator.FieldLevel) bool {
		return entity.LeadStatus(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}

	return &Validator{v: v}
}

// Struct valida s; el error resultante envuelve domain.ErrValidation.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validation(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Field()+": "+message(e))
	}
	return domain.Validation(strings.Join(msgs, "; "))
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		if e.Kind() == reflect.Slice {
			return "debe tener al menos " + e.Param() + " elemento(s)"
		}
		return "debe ser al menos " + e.Param()
	case "gte":
		return "debe ser mayor o igual a " + e.Param()
	case "lead_status":
		return "estado inválido, se espera uno de: " + statusList()
	default:
		return "valor inválido"
	}
}

func statusList() string {
	all := entity.AllLeadStatuses()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
