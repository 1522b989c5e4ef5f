package utils

import (
	"strings"

	"github.com/Govind-619/Clomora/models"
)

// SanitizeAddress trims every free-text field of the address in place.
func SanitizeAddress(a *models.Address) {
	for _, f := range []*string{
		&a.FullName, &a.Phone, &a.Email, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.Pincode, &a.Landmark,
	} {
		*f = SanitizeString(*f)
	}
}

// ValidateAddress validates address fields according to business rules
func ValidateAddress(a models.Address) []FieldValidationError {
	errs := []FieldValidationError{}

	required := []struct {
		field, label, value string
	}{
		{"fullName", "Full name", a.FullName},
		{"phone", "Phone number", a.Phone},
		{"addressLine1", "Address Line 1", a.AddressLine1},
		{"city", "City", a.City},
		{"state", "State", a.State},
		{"pincode", "Pincode", a.Pincode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, FieldValidationError{r.field, r.label + " is required"})
		}
	}

	if phone := strings.TrimSpace(a.Phone); phone != "" && len(phone) < MinPhoneLength {
		errs = append(errs, FieldValidationError{"phone", "Please enter a valid phone number"})
	}

	if email := strings.TrimSpace(a.Email); email != "" && !ValidateEmail(email) {
		errs = append(errs, FieldValidationError{"email", "Please enter a valid email address"})
	}

	return errs
}
