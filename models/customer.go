package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name" binding:"required"`
	CustomerType  string    `gorm:"size:30;default:Company" json:"customer_type"`
	TaxId         string    `gorm:"size:60" json:"tax_id"`
	Email         string    `gorm:"index;size:255" json:"email_id"`
	MobileNo      string    `gorm:"size:30" json:"mobile_no"`
	CustomerGroup string    `gorm:"size:140" json:"customer_group"`
	Territory     string    `gorm:"size:140" json:"territory"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PortalUser links a website user account to the customer it acts for.
type PortalUser struct {
	ID         int    `gorm:"primary_key" json:"id"`
	CustomerId int    `gorm:"index;not null" json:"customer_id"`
	User       string `gorm:"index;size:255;not null" json:"user"`
}

// CustomerCreditLimit is one per-company credit limit row for a customer.
type CustomerCreditLimit struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CustomerId  int             `gorm:"index;not null" json:"customer_id"`
	Company     string          `gorm:"size:140;not null" json:"company"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
}

// GetCustomerForUser resolves the customer linked to a session username
// through the portal-user table. Returns ErrNotFound when the user has no
// linked customer record.
func GetCustomerForUser(ctx context.Context, db *gorm.DB, username string) (*Customer, error) {
	var link PortalUser
	err := db.WithContext(ctx).Where("user = ?", username).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var customer Customer
	err = db.WithContext(ctx).First(&customer, link.CustomerId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func GetCustomerByEmail(ctx context.Context, db *gorm.DB, email string) (*Customer, error) {
	var customer Customer
	err := db.WithContext(ctx).Where("email = ?", email).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// LinkPortalUser attaches a user to a customer, once.
func LinkPortalUser(ctx context.Context, db *gorm.DB, customerId int, username string) error {
	var count int64
	err := db.WithContext(ctx).Model(&PortalUser{}).
		Where("customer_id = ? AND user = ?", customerId, username).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&PortalUser{CustomerId: customerId, User: username}).Error
}

// CompanyFinancial is one row of the customer financial dashboard.
type CompanyFinancial struct {
	Company     string          `json:"company"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Balance     decimal.Decimal `json:"balance"`
}

// GetFinancialInfo aggregates per-company credit limits and submitted-invoice
// outstanding amounts for one customer. Two grouped queries, merged in memory.
func GetFinancialInfo(ctx context.Context, db *gorm.DB, customerId int) ([]CompanyFinancial, error) {
	var limits []struct {
		Company     string
		CreditLimit decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&CustomerCreditLimit{}).
		Select("company, SUM(credit_limit) AS credit_limit").
		Where("customer_id = ?", customerId).
		Group("company").
		Scan(&limits).Error
	if err != nil {
		return nil, err
	}

	var outstanding []struct {
		Company     string
		Outstanding decimal.Decimal
	}
	err = db.WithContext(ctx).Model(&SalesInvoice{}).
		Select("company, SUM(outstanding_amount) AS outstanding").
		Where("customer_id = ? AND docstatus = ?", customerId, DocStatusSubmitted).
		Group("company").
		Scan(&outstanding).Error
	if err != nil {
		return nil, err
	}

	byCompany := make(map[string]*CompanyFinancial)
	order := make([]string, 0, len(limits)+len(outstanding))
	for _, l := range limits {
		byCompany[l.Company] = &CompanyFinancial{Company: l.Company, CreditLimit: l.CreditLimit}
		order = append(order, l.Company)
	}
	for _, o := range outstanding {
		row, ok := byCompany[o.Company]
		if !ok {
			row = &CompanyFinancial{Company: o.Company}
			byCompany[o.Company] = row
			order = append(order, o.Company)
		}
		row.Outstanding = o.Outstanding
	}

	results := make([]CompanyFinancial, 0, len(order))
	for _, company := range order {
		row := byCompany[company]
		row.Balance = row.CreditLimit.Sub(row.Outstanding)
		results = append(results, *row)
	}
	return results, nil
}
