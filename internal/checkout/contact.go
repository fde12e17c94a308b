package checkout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// PaymentMethod is one of the storefront's offered payment options.
type PaymentMethod string

const (
	PaymentWebATM   PaymentMethod = "webatm"
	PaymentATM      PaymentMethod = "atm"
	PaymentApplePay PaymentMethod = "applepay"
)

func (m PaymentMethod) valid() bool {
	switch m {
	case PaymentWebATM, PaymentATM, PaymentApplePay:
		return true
	}
	return false
}

// ContactInfo is the buyer form of the checkout page. It exists only for
// the duration of a submission; it is never stored outside an order.
type ContactInfo struct {
	Email   string
	Name    string
	Tel     string
	Address string
	Message string
}

// FieldError is a single field-scoped validation failure, rendered inline
// next to the field it names.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationErrors aggregates every failing field so the form can show all
// inline errors at once. Validation failures never reach the network.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "validation: " + strings.Join(parts, "; ")
}

const maxNameLength = 10

var (
	emailRe  = regexp.MustCompile(`^\S+@\S+$`)
	mobileRe = regexp.MustCompile(`^09\d{8}$`)
	// Landline: leading 0, 1-2 digit area code, 6-8 digit number.
	landlineRe = regexp.MustCompile(`^0\d{1,2}\d{6,8}$`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// Normalize trims surrounding whitespace and strips separators from the
// phone number, mirroring what the checkout form does before validating.
func (c ContactInfo) Normalize() ContactInfo {
	c.Email = strings.TrimSpace(c.Email)
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	c.Tel = nonDigitRe.ReplaceAllString(c.Tel, "")
	return c
}

// Validate checks the normalized contact fields and the payment method.
// It returns nil or a ValidationErrors listing every failing field.
func (c ContactInfo) Validate(payment PaymentMethod) error {
	var errs ValidationErrors

	switch {
	case c.Email == "":
		errs = append(errs, FieldError{Field: "email", Reason: "email is required"})
	case !emailRe.MatchString(c.Email):
		errs = append(errs, FieldError{Field: "email", Reason: "email format is invalid"})
	}

	switch {
	case c.Name == "":
		errs = append(errs, FieldError{Field: "name", Reason: "name is required"})
	case utf8.RuneCountInString(c.Name) > maxNameLength:
		errs = append(errs, FieldError{Field: "name", Reason: "name must be at most 10 characters"})
	}

	switch {
	case c.Tel == "":
		errs = append(errs, FieldError{Field: "tel", Reason: "phone number is required"})
	case !mobileRe.MatchString(c.Tel) && !landlineRe.MatchString(c.Tel):
		errs = append(errs, FieldError{Field: "tel", Reason: "enter a valid mobile or landline number"})
	}

	if c.Address == "" {
		errs = append(errs, FieldError{Field: "address", Reason: "address is required"})
	}

	if !payment.valid() {
		errs = append(errs, FieldError{Field: "payment", Reason: "unknown payment method"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
