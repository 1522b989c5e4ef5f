package utils

// Application constants
const (
	// Application name
	AppName = "Clomora"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "5000"

	// Default currency for gateway orders
	DefaultCurrency = "INR"

	// Free shipping applies at or above this subtotal (major units)
	DefaultFreeShippingThreshold = "999"

	// Flat shipping fee below the threshold (major units)
	DefaultFlatShippingFee = "99"

	// Minimum phone length accepted on an address
	MinPhoneLength = 10
)

// Error messages
const (
	ErrSignInRequired       = "Please sign in to continue"
	ErrInvalidRequest       = "Invalid request format"
	ErrAddressNotFound      = "Address not found"
	ErrOrderNotFound        = "Order not found"
	ErrCartEmpty            = "Your cart is empty"
	ErrSelectAddress        = "Please select a shipping address"
	ErrGatewayUnavailable   = "Failed to create order on server"
	ErrVerificationFailed   = "Payment verification failed"
	ErrOrderSaveFailed      = "Something went wrong while placing your order"
	ErrPaidOrderSaveFailed  = "Payment successful but failed to save order. Please contact support."
	ErrInvalidStatus        = "Invalid status"
	ErrInternalServer       = "Internal server error"
	ErrPaymentAttemptAbsent = "Payment attempt not found"
)

// Success messages
const (
	MsgAddressAdded       = "Address added successfully"
	MsgAddressUpdated     = "Address updated successfully"
	MsgAddressDeleted     = "Address deleted successfully"
	MsgDefaultAddressSet  = "Default address updated"
	MsgPaymentInitiated   = "Payment initiated successfully"
	MsgPaymentSuccessful  = "Thank you for your payment! Your order has been placed."
	MsgPaymentAbandoned   = "Payment cancelled"
	MsgCODOrderPlaced     = "Order placed successfully! Pay on delivery."
	MsgOrderStatusUpdated = "Order status updated successfully"
)
