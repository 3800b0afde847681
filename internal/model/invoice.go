package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice status values. An open invoice accumulates draft items; a closed
// invoice carries the permanent items snapshot and never changes again.
const (
	InvoiceOpen   = "open"
	InvoiceClosed = "closed"
)

// DraftItem is a staged sale line item, alive only while its invoice is
// open. It snapshots the product fields it needs so a return can restore
// stock even if the product row has meanwhile been deleted.
type DraftItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	StoreID     uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null" json:"warehouse_id"`
	Kind        string    `gorm:"type:varchar(10);not null" json:"kind"`

	Brand     string          `gorm:"type:varchar(255)" json:"brand"`
	Reference string          `gorm:"type:varchar(255)" json:"reference"`
	Color     string          `gorm:"type:varchar(100)" json:"color"`
	Gender    string          `gorm:"type:varchar(50)" json:"gender"`
	Comments  string          `gorm:"type:text" json:"comments"`
	ImageURL  string          `gorm:"type:text" json:"image_url"`
	Size      string          `gorm:"type:varchar(20)" json:"size"`
	Barcode   string          `gorm:"type:varchar(100);index" json:"barcode"`
	SalePrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"sale_price"`
	BasePrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"base_price"`

	// Box snapshot: Total2 is the box quantity dispensed by the sale,
	// BoxTotal the product's size-independent total at add time.
	IsBox    bool `gorm:"not null;default:false" json:"is_box"`
	Total2   int  `gorm:"type:int;not null;default:0" json:"total2"`
	BoxTotal int  `gorm:"type:int;not null;default:0" json:"box_total"`

	// Set when the unit came off a store's exhibition slot.
	ExhibitionStore string `gorm:"type:varchar(100)" json:"exhibition_store,omitempty"`

	Sold             bool       `gorm:"not null;default:false" json:"sold"`
	SoldAt           *time.Time `json:"sold_at,omitempty"`
	AssignedUser     uuid.UUID  `gorm:"type:uuid;not null" json:"assigned_user"`
	AssignedUserName string     `gorm:"type:varchar(255)" json:"assigned_user_name"`
	AddedAt          time.Time  `gorm:"autoCreateTime" json:"added_at"`
}

// Quantity returns the number of physical units the line represents.
func (d *DraftItem) Quantity() int {
	if d.IsBox {
		return d.Total2
	}
	return 1
}

// InvoiceItem is the permanent snapshot of a sold line inside a closed
// invoice, including the computed per-line earn.
type InvoiceItem struct {
	ProductID        uuid.UUID       `json:"product_id"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	Kind             string          `json:"kind"`
	Brand            string          `json:"brand"`
	Reference        string          `json:"reference"`
	Color            string          `json:"color"`
	Size             string          `json:"size"`
	Barcode          string          `json:"barcode"`
	ImageURL         string          `json:"image_url"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	BasePrice        decimal.Decimal `json:"base_price"`
	Earn             decimal.Decimal `json:"earn"`
	Quantity         int             `json:"quantity"`
	IsBox            bool            `json:"is_box"`
	Sold             bool            `json:"sold"`
	ExhibitionStore  string          `json:"exhibition_store,omitempty"`
	AssignedUser     uuid.UUID       `json:"assigned_user"`
	AssignedUserName string          `json:"assigned_user_name"`
	AddedAt          time.Time       `json:"added_at"`
}

// InvoiceItems is stored as a JSON column on the closed invoice.
type InvoiceItems []InvoiceItem

// Invoice is a sale transaction for one store. InvoiceNumber is the
// monotonic per-store sequence; InvoiceCode is the printed form
// (YYMMDD + store letter + zero-padded three-digit sequence).
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	StoreID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_id"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(50)" json:"customer_phone"`
	Status        string          `gorm:"type:varchar(10);not null;default:'open';index" json:"status"`
	InvoiceNumber int             `gorm:"type:int;not null;default:0" json:"invoice_number"`
	InvoiceCode   string          `gorm:"type:varchar(20)" json:"invoice_code"`
	TotalSold     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_sold"`
	TotalEarn     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_earn"`
	Items         InvoiceItems    `gorm:"serializer:json" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
