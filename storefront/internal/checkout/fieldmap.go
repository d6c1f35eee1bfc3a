package checkout

import "strings"

// Backend field paths do not match the checkout form's control keys; this
// table plus the prefix rules below translate between the two. Unknown paths
// fall back to their last segment so a new backend field still lands near
// the right control instead of being dropped.
var formFieldByPath = map[string]string{
	"shippingAddress.addressLine1": "address1",
	"shippingAddress.addressLine2": "address2",
	"shippingAddress.postalCode":   "pincode",
	"billingAddress.addressLine1":  "billing_address1",
	"billingAddress.addressLine2":  "billing_address2",
	"billingAddress.postalCode":    "billing_pincode",
	"paymentMethod":                "payment_method",
}

var renamedFields = map[string]string{
	"addressLine1": "address1",
	"addressLine2": "address2",
	"postalCode":   "pincode",
	"fullName":     "full_name",
}

// FormFieldKey maps a backend field path to the checkout form's field key.
func FormFieldKey(path string) string {
	if key, ok := formFieldByPath[path]; ok {
		return key
	}

	prefix := ""
	rest := path
	if after, ok := strings.CutPrefix(path, "billingAddress."); ok {
		prefix, rest = "billing_", after
	} else if after, ok := strings.CutPrefix(path, "shippingAddress."); ok {
		rest = after
	}
	if renamed, ok := renamedFields[rest]; ok {
		rest = renamed
	}
	return prefix + rest
}
