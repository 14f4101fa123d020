package common

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// Indian mobile numbers are 10 digits and start with 6, 7, 8 or 9.
	mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	// IFSC codes are 4 uppercase letters, a literal zero, then 6 alphanumerics.
	ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[0-9A-Z]{6}$`)
	// Holder and customer names carry letters and spaces only.
	alphaSpacePattern = regexp.MustCompile(`^[A-Za-z ]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return ifscPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpacePattern.MatchString(fl.Field().String())
	})
	return v
}

func ValidateAndDecode(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	if err := validate.Struct(payload); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return false
	}

	return true
}
