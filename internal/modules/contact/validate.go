package contact

import "strings"

const phoneDigits = 10

// Validation rules reported in ValidationError.Rule.
const (
	RuleNameRequired    = "name_required"
	RulePhoneDigits     = "phone_digits"
	RuleEmailFormat     = "email_format"
	RulePriorityRange   = "priority_range"
	RuleBusinessType    = "business_type"
	RuleProductType     = "product_type"
	RuleProductIdentity = "product_identity"
	RulePhotoIndex      = "photo_index"
)

// validateFields runs the commit checks in order and stops at the first
// violation.
func validateFields(f Fields) error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid(RuleNameRequired, "Please enter the contact name")
	}
	if n := len(Digits(f.Phone)); n != 0 && n != phoneDigits {
		return invalid(RulePhoneDigits, "Phone number must have exactly %d digits, got %d", phoneDigits, n)
	}
	if e := strings.TrimSpace(f.Email); e != "" && !strings.Contains(e, "@") {
		return invalid(RuleEmailFormat, "Email address must contain @")
	}
	if f.Priority < 1 || f.Priority > 10 {
		return invalid(RulePriorityRange, "Priority must be between 1 and 10")
	}
	if !f.BusinessType.Valid() {
		return invalid(RuleBusinessType, "Unknown business type %q", f.BusinessType)
	}
	return nil
}

func validateForm(form ProductForm) error {
	if !form.Kind.Valid() {
		return invalid(RuleProductType, "Please choose a product type")
	}
	if form.Type().Resolve() == "" {
		return invalid(RuleProductType, "Please enter a custom product type")
	}
	if strings.TrimSpace(form.Name) == "" && len(form.Photos)+len(form.Pending) == 0 {
		return invalid(RuleProductIdentity, "Please enter a product name or take a photo")
	}
	return nil
}
