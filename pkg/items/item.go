package items

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"simpleapp/itemsvc/pkg/apperr"
)

// Field limits of an item.
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 500
)

// Item is a stored item.
type Item struct {
	ID          int64     `json:"item_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input holds the writable fields of an item, already validated.
type Input struct {
	Name        string
	Description string
	Price       float64
}

// Request is the JSON body of create and update calls. Pointer fields tell
// a missing field from a zero value.
type Request struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

// Validate trims string fields and checks every field, reporting all
// problems at once.
func (r Request) Validate() (Input, error) {
	var (
		in     Input
		fields []apperr.FieldError
	)

	in.Name, fields = validateString(fields, "name", r.Name, MaxNameLength)
	in.Description, fields = validateString(fields, "description", r.Description, MaxDescriptionLength)

	switch {
	case r.Price == nil:
		fields = append(fields, missing("price"))
	case *r.Price <= 0:
		fields = append(fields, apperr.FieldError{
			Field:   "body.price",
			Message: "Input should be greater than 0",
			Type:    "greater_than",
		})
	default:
		in.Price = *r.Price
	}

	if len(fields) > 0 {
		return Input{}, apperr.Validation(fields...)
	}
	return in, nil
}

func validateString(fields []apperr.FieldError, name string, value *string, maxLen int) (string, []apperr.FieldError) {
	if value == nil {
		return "", append(fields, missing(name))
	}

	s := strings.TrimSpace(*value)
	n := utf8.RuneCountInString(s)
	switch {
	case n < 1:
		return "", append(fields, apperr.FieldError{
			Field:   "body." + name,
			Message: "String should have at least 1 character",
			Type:    "string_too_short",
		})
	case n > maxLen:
		return "", append(fields, apperr.FieldError{
			Field:   "body." + name,
			Message: fmt.Sprintf("String should have at most %d characters", maxLen),
			Type:    "string_too_long",
		})
	}
	return s, fields
}

func missing(name string) apperr.FieldError {
	return apperr.FieldError{Field: "body." + name, Message: "Field required", Type: "missing"}
}

// ParseID parses an item ID from a path segment.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindBadRequest, err,
			fmt.Sprintf("Invalid item_id format: %s is not a valid integer", raw))
	}
	return id, nil
}
