package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeySessionID          = "sessionId"
	KeyCartVersion        = "cartVersion"
	KeyCartItems          = "cartItems"
	KeyCartItemID         = "cartItemId"
	KeyProductID          = "productId"
	KeyVariantID          = "variantId"
	KeyQuantity           = "quantity"
	KeyCouponCode         = "couponCode"
	KeyDiscountAmount     = "discountAmount"
	KeySubtotal           = "subtotal"
	KeyTotal              = "total"
	KeyStorageKey         = "storageKey"
	KeySubmissionSeq      = "submissionSeq"
	KeyOutcome            = "outcome"
	KeyOrderID            = "orderId"
	KeyPrunedCount        = "prunedCount"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIP          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyToken              = "token"
)
