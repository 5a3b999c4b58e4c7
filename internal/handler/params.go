package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// filterParams are the ?month= and ?day= query parameters.
// Membership in the month and day lists is checked by domain.ParseFilter,
// which produces the more helpful message.
type filterParams struct {
	Month string `json:"month" validate:"omitempty,alpha,max=9"`
	Day   string `json:"day" validate:"omitempty,alpha,max=9"`
}

func (p filterParams) filter() (domain.Filter, error) {
	return domain.ParseFilter(p.Month, p.Day)
}

// rawParams are the query parameters of GET /cities/{city}/raw.
type rawParams struct {
	Cursor int `json:"cursor" validate:"gte=0"`
}

// exportParams are the query parameters of GET /cities/{city}/export.
type exportParams struct {
	filterParams
	Format string `json:"format" validate:"oneof=csv xlsx"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report query parameter names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindQuery binds one optional form-style query parameter into dest.
// dest is left untouched when the parameter is absent.
func bindQuery(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("%w: invalid %s parameter", domain.ErrValidation, name)
	}
	return nil
}

func (s *Server) bindFilter(r *http.Request) (filterParams, error) {
	var p filterParams
	if err := bindQuery(r, "month", &p.Month); err != nil {
		return p, err
	}
	if err := bindQuery(r, "day", &p.Day); err != nil {
		return p, err
	}
	return p, s.check(p)
}

func (s *Server) bindRaw(r *http.Request) (rawParams, error) {
	var p rawParams
	if err := bindQuery(r, "cursor", &p.Cursor); err != nil {
		return p, err
	}
	return p, s.check(p)
}

func (s *Server) bindExport(r *http.Request) (exportParams, error) {
	f, err := s.bindFilter(r)
	if err != nil {
		return exportParams{}, err
	}
	p := exportParams{filterParams: f, Format: string(domain.FormatCSV)}
	if err := bindQuery(r, "format", &p.Format); err != nil {
		return p, err
	}
	p.Format = strings.ToLower(p.Format)
	return p, s.check(p)
}

// check runs struct validation and folds any failures into one ErrValidation.
func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "alpha":
		return fmt.Sprintf("%s must contain only letters", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
