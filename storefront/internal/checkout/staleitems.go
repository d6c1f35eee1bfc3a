package checkout

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// The order service reports no-longer-purchasable products by embedding an id
// list in a human-readable message, e.g. "some items are unavailable,
// IDs: 3f1c..., 9a27...". Parsing that is brittle by construction, so the
// strategy is isolated here: swap this function for a structured error code
// without touching the submitter's state machine.
var staleItemsPattern = regexp.MustCompile(`(?i)\bIDs:\s*([0-9a-fA-F,\s-]+)`)

// ParseStaleItemIDs extracts the offending product ids from an order error
// message. ok is false when the message does not carry a parseable id list;
// the caller degrades to a generic failure in that case.
func ParseStaleItemIDs(message string) (ids []uuid.UUID, ok bool) {
	match := staleItemsPattern.FindStringSubmatch(message)
	if match == nil {
		return nil, false
	}

	for _, token := range strings.Split(match[1], ",") {
		id, err := uuid.Parse(strings.TrimSpace(token))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, len(ids) > 0
}
