package constants

const (
	AppStorefrontService = "storefront-service"
	AudienceCustomer     = "audience-customer"
)
