package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldReasons(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field] = fe.Reason
	}
	return out
}

func TestContactValidate_OK(t *testing.T) {
	c := ContactInfo{
		Email:   "lin@example.com",
		Name:    "Lin",
		Tel:     "0912345678",
		Address: "No.1, Sec. 1",
	}
	require.NoError(t, c.Normalize().Validate(PaymentApplePay))
}

func TestContactValidate_EmailShape(t *testing.T) {
	c := ContactInfo{Email: "not-an-email", Name: "Lin", Tel: "0912345678", Address: "a"}
	reasons := fieldReasons(t, c.Normalize().Validate(PaymentATM))
	assert.Equal(t, "email format is invalid", reasons["email"])
}

func TestContactValidate_NameLength(t *testing.T) {
	c := ContactInfo{Email: "a@b.c", Name: "一二三四五六七八九十一", Tel: "0912345678", Address: "a"}
	reasons := fieldReasons(t, c.Normalize().Validate(PaymentATM))
	assert.Contains(t, reasons["name"], "at most 10")
}

func TestContactValidate_Phone(t *testing.T) {
	base := ContactInfo{Email: "a@b.c", Name: "Lin", Address: "a"}

	valid := []string{
		"0912345678",     // mobile
		"0912-345-678",   // mobile with separators
		"02-2345-6789",   // Taipei landline
		"049-234-5678",   // 3-digit area landline
	}
	for _, tel := range valid {
		c := base
		c.Tel = tel
		assert.NoError(t, c.Normalize().Validate(PaymentATM), "tel %q", tel)
	}

	invalid := []string{
		"",
		"12345",
		"0912345",      // too short for mobile
		"091234567890", // too long
		"9123456789",   // missing leading zero
	}
	for _, tel := range invalid {
		c := base
		c.Tel = tel
		err := c.Normalize().Validate(PaymentATM)
		reasons := fieldReasons(t, err)
		assert.NotEmpty(t, reasons["tel"], "tel %q should fail", tel)
	}
}

func TestContactValidate_UnknownPayment(t *testing.T) {
	c := ContactInfo{Email: "a@b.c", Name: "Lin", Tel: "0912345678", Address: "a"}
	reasons := fieldReasons(t, c.Normalize().Validate(PaymentMethod("cash")))
	assert.Equal(t, "unknown payment method", reasons["payment"])
}

func TestNormalize_TrimsAndStrips(t *testing.T) {
	c := ContactInfo{
		Email:   " lin@example.com ",
		Name:    " Lin ",
		Tel:     "(09) 1234-5678",
		Address: " No.1 ",
	}.Normalize()

	assert.Equal(t, "lin@example.com", c.Email)
	assert.Equal(t, "Lin", c.Name)
	assert.Equal(t, "0912345678", c.Tel)
	assert.Equal(t, "No.1", c.Address)
}
