package costing

import "errors"

var (
	ErrVariantNotFound = errors.New("variant not found")
	ErrVariantCycle    = errors.New("variant cannot be moved below itself or its descendants")
	ErrInvalidItemRef  = errors.New("invalid variant item reference")
	ErrInvalidStatus   = errors.New("invalid variant status")

	ErrInvalidPaymentTerms = errors.New("invalid payment terms")
)
