package checkout

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStaleItemIDs(t *testing.T) {
	firstId := uuid.New()
	secondId := uuid.New()

	tests := []struct {
		name        string
		message     string
		expectedIds []uuid.UUID
		expectedOk  bool
	}{
		{
			name:        "given message with id list should extract every id",
			message:     fmt.Sprintf("some items are no longer available, IDs: %s, %s", firstId, secondId),
			expectedIds: []uuid.UUID{firstId, secondId},
			expectedOk:  true,
		},
		{
			name:        "given lowercase marker should still match",
			message:     fmt.Sprintf("stale items detected, ids: %s", firstId),
			expectedIds: []uuid.UUID{firstId},
			expectedOk:  true,
		},
		{
			name:       "given message without marker should not match",
			message:    "payment gateway unavailable",
			expectedOk: false,
		},
		{
			name:       "given marker with unparseable ids should not match",
			message:    "IDs: one, two, three",
			expectedOk: false,
		},
		{
			name:       "given empty message should not match",
			message:    "",
			expectedOk: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ids, ok := ParseStaleItemIDs(test.message)
			require.Equal(t, test.expectedOk, ok)
			assert.Equal(t, test.expectedIds, ids)
		})
	}
}

func TestFormFieldKey(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "given shipping address line should map to bare form key",
			path:     "shippingAddress.addressLine1",
			expected: "address1",
		},
		{
			name:     "given billing address line should map to prefixed form key",
			path:     "billingAddress.addressLine1",
			expected: "billing_address1",
		},
		{
			name:     "given postal code should map to pincode",
			path:     "shippingAddress.postalCode",
			expected: "pincode",
		},
		{
			name:     "given payment method should map to snake case",
			path:     "paymentMethod",
			expected: "payment_method",
		},
		{
			name:     "given unknown shipping field should fall back to last segment",
			path:     "shippingAddress.landmark",
			expected: "landmark",
		},
		{
			name:     "given unknown billing field should keep billing prefix",
			path:     "billingAddress.landmark",
			expected: "billing_landmark",
		},
		{
			name:     "given renamed bare field should translate",
			path:     "shippingAddress.fullName",
			expected: "full_name",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, FormFieldKey(test.path))
		})
	}
}
