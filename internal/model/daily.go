package model

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DailyBar is one trading day of one instrument. Input sequences are not
// assumed sorted or unique by date.
type DailyBar struct {
	InstrumentID  string    `json:"ticker" validate:"required"`
	Date          time.Time `json:"date"`
	Open          float64   `json:"open" validate:"finite"`
	High          float64   `json:"high" validate:"finite"`
	Low           float64   `json:"low" validate:"finite"`
	Close         float64   `json:"close" validate:"finite"`
	Volume        float64   `json:"volume" validate:"finite"`
	AdjustedClose float64   `json:"adjclose" validate:"finite"`
}

var validate = mustValidator(newValidator())

func mustValidator(v *validator.Validate, err error) *validator.Validate {
	if err != nil {
		panic(fmt.Sprintf("model: build validator: %v", err))
	}
	return v
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("finite", isFinite); err != nil {
		return nil, fmt.Errorf("register finite: %w", err)
	}
	return v, nil
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate checks the required fields. Failures are *MalformedInputError.
func (b DailyBar) Validate() error {
	if err := validate.Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &MalformedInputError{
				InstrumentID: b.InstrumentID,
				Field:        fe.Field(),
				Value:        fmt.Sprint(fe.Value()),
				Err:          fmt.Errorf("failed %q check", fe.Tag()),
			}
		}
		return &MalformedInputError{InstrumentID: b.InstrumentID, Err: err}
	}
	if b.Date.IsZero() {
		return &MalformedInputError{
			InstrumentID: b.InstrumentID,
			Field:        "date",
			Err:          errors.New("missing date"),
		}
	}
	return nil
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
