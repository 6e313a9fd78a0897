package sale

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"westernpos/m/domain"
	"westernpos/m/internal/apperror"
	"westernpos/m/internal/cart"
)

func TestValidContact(t *testing.T) {
	cases := map[string]bool{
		"abc":           false,
		"08012345678":   true,
		"a@b.com":       true,
		"0801234567":    false,
		"080123456789":  false,
		"+8012345678":   false,
		"0801234567a":   false,
		"":              false,
		"ada@store.com": true,
	}
	for contact, want := range cases {
		if got := ValidContact(contact); got != want {
			t.Errorf("ValidContact(%q) = %v, want %v", contact, got, want)
		}
	}
}

func filledCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New()
	_, err := c.AddLine(domain.Product{ID: 1, Name: "A", Quantity: 5, CostPrice: decimal.NewFromInt(80), SellingPrice: decimal.NewFromInt(100)}, 1)
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	return c
}

func TestValidate_OK(t *testing.T) {
	req := Request{CustomerName: "Ada", CustomerContact: "08012345678"}
	if err := Validate(req, filledCart(t)); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	req := Request{CustomerName: "A", CustomerContact: "abc", PaymentMethod: "cheque"}

	err := Validate(req, cart.New())
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	appErr := apperror.From(err)
	for _, field := range []string{"customer_contact", "customer_name", "item_count", "payment_method"} {
		if _, ok := appErr.Field(field); !ok {
			t.Errorf("expected %s to be flagged, got %+v", field, appErr.Errors)
		}
	}
}

func TestValidate_CustomerNameLength(t *testing.T) {
	for _, tc := range []struct {
		name  string
		valid bool
	}{
		{"", false},
		{"A", false},
		{" a", true},
		{"Ade", true},
	} {
		err := Validate(Request{CustomerName: tc.name, CustomerContact: "a@b.com"}, filledCart(t))
		flagged := false
		if err != nil {
			_, flagged = apperror.From(err).Field("customer_name")
		}
		if flagged == tc.valid {
			t.Errorf("name %q: expected valid=%v, got %v", tc.name, tc.valid, err)
		}
	}
}

func TestValidate_PaymentMethodNormalized(t *testing.T) {
	req := Request{CustomerName: "Ada", CustomerContact: "a@b.com", PaymentMethod: " transfer "}
	if err := Validate(req, filledCart(t)); err != nil {
		t.Errorf("expected lower-case payment method to be accepted, got %v", err)
	}
}

func TestValidate_ZeroQuantityLines(t *testing.T) {
	c := filledCart(t)
	line := c.Lines()[0]
	c.SetQuantity(line.ID, 0)

	err := Validate(Request{CustomerName: "Ada", CustomerContact: "a@b.com"}, c)
	appErr := apperror.From(err)
	if _, ok := appErr.Field("items"); !ok {
		t.Fatalf("expected items to be flagged, got %v", err)
	}
	// The zero-quantity line still counts as an item on the cart.
	if _, ok := appErr.Field("item_count"); ok {
		t.Error("item_count should not be flagged while a line is present")
	}
}
