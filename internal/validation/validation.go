package validation

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the only accepted date format
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("float", func(fl validator.FieldLevel) bool {
		_, err := ParseTemperature(fl.Field().String())
		return err == nil
	})
	return v
}

// ParseTemperature accepts any decimal or exponent form ("5", ".5", "5.", "1e1")
func ParseTemperature(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Error is a user-facing validation failure
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ValidateDate reports whether s is empty or a YYYY-MM-DD date
func ValidateDate(s string) bool {
	return validate.Var(s, "omitempty,isodate") == nil
}

// SearchForm is the home page lookup form
type SearchForm struct {
	City      string `validate:"required"`
	StartDate string `validate:"omitempty,isodate"`
	EndDate   string `validate:"omitempty,isodate"`
}

// NewSearchForm trims the raw form values
func NewSearchForm(city, startDate, endDate string) SearchForm {
	return SearchForm{
		City:      strings.TrimSpace(city),
		StartDate: strings.TrimSpace(startDate),
		EndDate:   strings.TrimSpace(endDate),
	}
}

var searchMessages = map[string]string{
	"City":      "Please provide a city name.",
	"StartDate": "Dates must be in YYYY-MM-DD format.",
	"EndDate":   "Dates must be in YYYY-MM-DD format.",
}

// Validate returns the first failing field as an *Error
func (f SearchForm) Validate() error {
	return check(f, searchMessages)
}

// UpdateForm is the history edit form
type UpdateForm struct {
	City        string `validate:"required"`
	StartDate   string `validate:"omitempty,isodate"`
	EndDate     string `validate:"omitempty,isodate"`
	Temperature string `validate:"omitempty,float"`
	Description string
}

// NewUpdateForm trims the raw form values
func NewUpdateForm(city, startDate, endDate, temperature, description string) UpdateForm {
	return UpdateForm{
		City:        strings.TrimSpace(city),
		StartDate:   strings.TrimSpace(startDate),
		EndDate:     strings.TrimSpace(endDate),
		Temperature: strings.TrimSpace(temperature),
		Description: strings.TrimSpace(description),
	}
}

var updateMessages = map[string]string{
	"City":        "City is required.",
	"StartDate":   "Dates must be in YYYY-MM-DD format.",
	"EndDate":     "Dates must be in YYYY-MM-DD format.",
	"Temperature": "Temperature must be a number.",
}

// Validate returns the first failing field as an *Error
func (f UpdateForm) Validate() error {
	return check(f, updateMessages)
}

// CoordsQuery holds the coordinate lookup parameters
type CoordsQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

var coordsMessages = map[string]string{
	"Lat.required": "Latitude and longitude are required",
	"Lon.required": "Latitude and longitude are required",
	"Lat":          "Latitude and longitude must be valid coordinates",
	"Lon":          "Latitude and longitude must be valid coordinates",
}

// Validate returns the first failing field as an *Error
func (q CoordsQuery) Validate() error {
	// missing either value is reported before a malformed one
	if q.Lat == "" || q.Lon == "" {
		return &Error{Field: "Lat", Message: coordsMessages["Lat.required"]}
	}
	return check(q, coordsMessages)
}

func check(s interface{}, messages map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg, ok = messages[fe.Field()]
	}
	if !ok {
		msg = fe.Error()
	}
	return &Error{Field: fe.Field(), Message: msg}
}
