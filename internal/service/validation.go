package service

import (
	"errors"
	"math"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"storefront/internal/domain"
)

// validate convierte los errores de ozzo en *domain.ValidationError.
func validate(v validation.Validatable) error {
	if err := v.Validate(); err != nil {
		return &domain.ValidationError{Err: err}
	}
	return nil
}

var errBlank = errors.New("cannot be blank")

var positivePrice = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("must be a number")
	}
	if v <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
})

var readableFile = validation.By(func(value interface{}) error {
	path, _ := value.(string)
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if !isLocalFile(path) {
		return errors.New("must be a readable file")
	}
	return nil
})

func isLocalFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
