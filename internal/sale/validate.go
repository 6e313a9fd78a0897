package sale

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"westernpos/m/internal/apperror"
	"westernpos/m/internal/cart"
)

// Payment methods accepted at the till.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentPOS      = "POS"
	PaymentTransfer = "TRANSFER"
)

var validate = validator.New()

// Request is what the cashier fills in before completing a sale.
type Request struct {
	CustomerName    string `json:"customer_name"`
	CustomerContact string `json:"customer_contact"`
	PaymentMethod   string `json:"payment_method"`
}

// normalized tidies contact and payment method. The customer name is kept as
// typed; its length check counts every character.
func (r Request) normalized() Request {
	r.CustomerContact = strings.TrimSpace(r.CustomerContact)
	r.PaymentMethod = strings.ToUpper(strings.TrimSpace(r.PaymentMethod))
	if r.PaymentMethod == "" {
		r.PaymentMethod = PaymentCash
	}
	return r
}

// ValidContact reports whether contact is an email address or an 11-digit
// phone number.
func ValidContact(contact string) bool {
	if validate.Var(contact, "required,email") == nil {
		return true
	}
	return validate.Var(contact, "len=11,number") == nil
}

// Validate checks the request against the cart. Every check runs so that all
// offending fields are reported together.
func Validate(req Request, c *cart.Cart) error {
	req = req.normalized()
	var fields []apperror.FieldError

	if !ValidContact(req.CustomerContact) {
		fields = append(fields, apperror.FieldError{Field: "customer_contact", Message: "enter an email address or an 11-digit phone number"})
	}
	if utf8.RuneCountInString(req.CustomerName) <= 1 {
		fields = append(fields, apperror.FieldError{Field: "customer_name", Message: "enter the customer name"})
	}
	if c.Len() == 0 {
		fields = append(fields, apperror.FieldError{Field: "item_count", Message: "add at least one product"})
	} else if keep, _ := c.Partition(); len(keep) == 0 {
		fields = append(fields, apperror.FieldError{Field: "items", Message: "every product has a quantity of zero"})
	}
	switch req.PaymentMethod {
	case PaymentCash, PaymentCard, PaymentPOS, PaymentTransfer:
	default:
		fields = append(fields, apperror.FieldError{Field: "payment_method", Message: "unknown payment method " + req.PaymentMethod})
	}

	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}
