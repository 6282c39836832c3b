package weather

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxBatchSize bounds the number of locations in one request.
const MaxBatchSize = 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("location", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

type batch struct {
	Locations []string `validate:"min=1,max=10,dive,location"`
}

// ValidateBatch checks cardinality and that no location is blank.
func ValidateBatch(locations []string) error {
	err := validate.Struct(batch{Locations: locations})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InvalidBatchError{Reason: err.Error()}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "min", "max":
		return &InvalidBatchError{
			Reason: fmt.Sprintf("expected 1 to %d locations, got %d", MaxBatchSize, len(locations)),
		}
	case "location":
		return &InvalidBatchError{Reason: fmt.Sprintf("%s must be a non-empty location", elementName(fe))}
	default:
		return &InvalidBatchError{Reason: fe.Error()}
	}
}

// ParseBatch converts a decoded JSON value into a validated list of locations.
// Strings are taken as-is; numbers (unquoted zip codes) are formatted without
// exponent. Anything else rejects the batch.
func ParseBatch(raw any) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, &InvalidBatchError{Reason: "locations must be an array"}
	}
	if len(items) == 0 || len(items) > MaxBatchSize {
		return nil, &InvalidBatchError{
			Reason: fmt.Sprintf("expected 1 to %d locations, got %d", MaxBatchSize, len(items)),
		}
	}

	locations := make([]string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			locations[i] = v
		case float64:
			locations[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, &InvalidBatchError{
				Reason: fmt.Sprintf("locations[%d] must be a city name or zip code", i),
			}
		}
	}

	if err := ValidateBatch(locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// elementName turns "batch.Locations[3]" into "locations[3]".
func elementName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "["); i >= 0 {
		return "locations" + ns[i:]
	}
	return "locations"
}
