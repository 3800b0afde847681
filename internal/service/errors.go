package service

import "errors"

// Sentinel errors separating validation and not-found conditions from
// operational (database/index) failures. Handlers map these to 4xx
// responses; anything else is a 5xx.
var (
	ErrBarcodeNotFound  = errors.New("barcode not found in any warehouse")
	ErrAmbiguousBarcode = errors.New("barcode matches units in more than one warehouse")
	ErrUserRequired     = errors.New("an assigned user is required")
	ErrInvalidPrice     = errors.New("price must be a non-negative integer")
	ErrEmptyInvoice     = errors.New("cannot close an empty invoice")
	ErrUnsoldItems      = errors.New("all items must be marked as sold before closing the invoice")
	ErrInvoiceClosed    = errors.New("invoice is already closed")
	ErrSlotOccupied     = errors.New("store already displays a unit of this product")
)
