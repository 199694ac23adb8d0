package errors

// Error codes returned to the app.
// Format: CATEGORY_SPECIFIC_DETAIL. The app maps these to localized messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // login required
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // token expired
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // malformed or unsigned token
	AuthSessionEnded = "AUTH_SESSION_ENDED" // session logged out

	// ==================== Authz (AUTHZ_) ====================
	AuthzForbidden  = "AUTHZ_FORBIDDEN"   // no access
	AuthzSellerOnly = "AUTHZ_SELLER_ONLY" // seller account required
	AuthzAdminOnly  = "AUTHZ_ADMIN_ONLY"  // admin only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationRequired     = "VALIDATION_REQUIRED"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"

	// ==================== Cart (CART_) ====================
	CartProductUnavailable = "CART_PRODUCT_UNAVAILABLE" // product not loaded locally
	CartSizeUnavailable    = "CART_SIZE_UNAVAILABLE"    // size not offered
	CartInsufficientStock  = "CART_INSUFFICIENT_STOCK"  // quantity above stock
	CartInvalidQuantity    = "CART_INVALID_QUANTITY"    // quantity below 1
	CartItemNotFound       = "CART_ITEM_NOT_FOUND"      // no such line item
	CartEmpty              = "CART_EMPTY"               // nothing to check out

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutIncompleteAddress    = "CHECKOUT_INCOMPLETE_ADDRESS"
	CheckoutMissingPhone         = "CHECKOUT_MISSING_PHONE"
	CheckoutInvalidPaymentMethod = "CHECKOUT_INVALID_PAYMENT_METHOD"
	CheckoutPartialFailure       = "CHECKOUT_PARTIAL_FAILURE" // some sellers failed

	// ==================== Order (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION"

	// ==================== Address (ADDRESS_) ====================
	AddressNotFound = "ADDRESS_NOT_FOUND"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== Upstream (UPSTREAM_) ====================
	UpstreamUnavailable = "UPSTREAM_UNAVAILABLE" // network or upstream failure

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalStorageError  = "INTERNAL_STORAGE_ERROR" // report upload failed
)
