package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product.
type Product struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	UnitID      int64           `json:"unit_id"`
	BrandID     *int64          `json:"brand_id,omitempty"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
	Price       decimal.Decimal `json:"price"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
