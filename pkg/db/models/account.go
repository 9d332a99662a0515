package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// Account is a registered vendor or supplier business. Supplier-only columns
// stay at their zero values for vendors.
type Account struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Type             enums.AccountType `gorm:"column:account_type;not null"`
	Phone            string            `gorm:"column:phone;not null;uniqueIndex:ux_accounts_phone"`
	BusinessName     string            `gorm:"column:business_name;not null"`
	OwnerName        string            `gorm:"column:owner_name;not null"`
	Email            *string           `gorm:"column:email"`
	Address          string            `gorm:"column:address;not null"`
	City             string            `gorm:"column:city;not null"`
	State            string            `gorm:"column:state;not null"`
	Pincode          string            `gorm:"column:pincode;not null"`
	BusinessType     string            `gorm:"column:business_type;not null"`
	YearsInBusiness  int               `gorm:"column:years_in_business;not null;default:0"`
	Description      *string           `gorm:"column:description"`
	GSTNumber        *string           `gorm:"column:gst_number"`
	FSSAILicense     *string           `gorm:"column:fssai_license"`
	Categories       pq.StringArray    `gorm:"column:categories;type:text"` // text[] in Postgres migrations
	MinOrderValue    decimal.Decimal   `gorm:"column:min_order_value;type:numeric(12,2);not null;default:0"`
	DeliveryRadiusKM int               `gorm:"column:delivery_radius_km;not null;default:0"`
	Verified         bool              `gorm:"column:verified;not null;default:false"`
	Rating           float64           `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	LastLoginAt      *time.Time        `gorm:"column:last_login_at"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// IsSupplier reports whether the account sells on the marketplace.
func (a *Account) IsSupplier() bool {
	return a.Type == enums.AccountTypeSupplier
}
