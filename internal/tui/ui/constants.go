package ui

// Default component dimensions.
const (
	// DefaultWidth is the assumed terminal width before the first resize.
	DefaultWidth = 80

	// DefaultHeight is the assumed terminal height before the first resize.
	DefaultHeight = 24

	// CouponCharLimit caps the coupon input length.
	CouponCharLimit = 50

	// CouponInputWidth is the coupon text input width.
	CouponInputWidth = 32
)
