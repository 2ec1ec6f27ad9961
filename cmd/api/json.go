package main

import (
	"encoding/json"
	"net/http"

	"turfbook/internal/domain/bookings"
	"turfbook/internal/params"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// 24h wall clock, "HH:MM"; 24:00 is accepted as an end of day
	Validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := bookings.ParseClock(fl.Field().String())
		return err == nil
	})

	// calendar date, "YYYY-MM-DD"
	Validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := bookings.ParseDate(fl.Field().String())
		return err == nil
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) error {
	return writeJSON(w, status, &ErrorResponse{
		Success: false,
		Status:  status,
		Code:    code,
		Message: message,
	})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, &envelope{Data: data})
}

// Page is the body of every paginated list.
type Page[T any] struct {
	Items      []T               `json:"items"`
	Pagination params.Pagination `json:"pagination"`
}

func newPage[T any](items []T, p params.Pagination, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	p.ComputeMeta(total)
	return Page[T]{Items: items, Pagination: p}
}
