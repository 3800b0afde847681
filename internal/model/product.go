package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductKind discriminates the two stock collections of the original data
// model. It is stored explicitly and carried onto draft items so a return
// never has to guess which collection a unit came from.
const (
	KindProduct = "product"
	KindShirt   = "shirt"
)

// SizeEntry holds the stock of one size label: a quantity and the unique
// barcodes backing it. quantity must equal len(Barcodes) for sized units.
type SizeEntry struct {
	Quantity int      `json:"quantity"`
	Barcodes []string `json:"barcodes"`
}

// SizeMap maps a size label ("40", "M", ...) to its stock entry. A size
// entry is removed outright when its quantity reaches zero.
type SizeMap map[string]SizeEntry

// ExhibitionSlot is one physical unit displayed at a store.
type ExhibitionSlot struct {
	Size    string `json:"size"`
	Barcode string `json:"barcode"`
}

// ExhibitionMap maps a store ID to the single unit that store displays.
type ExhibitionMap map[string]ExhibitionSlot

// Product is a stocked item in a warehouse. Regular units live in the Sizes
// map; box units are tracked by the top-level Barcode and Total2 instead.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Kind        string          `gorm:"type:varchar(10);not null;default:'product';index" json:"kind"`
	Brand       string          `gorm:"type:varchar(255);not null" json:"brand"`
	Reference   string          `gorm:"type:varchar(255);not null" json:"reference"`
	Color       string          `gorm:"type:varchar(100)" json:"color"`
	Gender      string          `gorm:"type:varchar(50)" json:"gender"`
	Comments    string          `gorm:"type:text" json:"comments"`
	ImageURL    string          `gorm:"type:text" json:"image_url"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"baseprice"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"saleprice"`
	Sizes       SizeMap         `gorm:"serializer:json" json:"sizes"`
	Total       int             `gorm:"type:int;not null;default:0" json:"total"`
	Exhibition  ExhibitionMap   `gorm:"serializer:json" json:"exhibition"`

	// Box units: one barcode for the whole container, Total2 as its quantity.
	IsBox   bool   `gorm:"not null;default:false" json:"is_box"`
	Barcode string `gorm:"type:varchar(100);index" json:"barcode"`
	Total2  int    `gorm:"type:int;not null;default:0" json:"total2"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SumSizes returns the quantity total implied by the size map.
func (p *Product) SumSizes() int {
	sum := 0
	for _, entry := range p.Sizes {
		sum += entry.Quantity
	}
	return sum
}

// ResolvedUnit is the outcome of a barcode lookup: the product a scanned
// barcode belongs to plus where exactly the unit sits (size stock, a store's
// exhibition slot, or the box itself).
type ResolvedUnit struct {
	Product         Product   `json:"product"`
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	Size            string    `json:"size"`
	Barcode         string    `json:"barcode"`
	Quantity        int       `json:"quantity"`
	IsBox           bool      `json:"is_box"`
	ExhibitionStore string    `json:"exhibition_store,omitempty"`
}
