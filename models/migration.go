package models

import (
	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
)

// MigrateTable runs AutoMigrate for every table. Called from main() once the
// database connection is ready, unless SKIP_MIGRATIONS is set.
func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Item{},
		&ItemAttribute{},
		&ItemGroup{},
		&WorkOrder{},
		&Warehouse{},
		&Bin{},
		&Customer{},
		&PortalUser{},
		&CustomerCreditLimit{},
		&Address{},
		&Quotation{},
		&QuotationItem{},
		&SalesOrder{},
		&SalesOrderItem{},
		&SalesInvoice{},
		&SalesInvoiceItem{},
		&WishlistItem{},
		&Review{},
		&User{},
		&EmailGroupMember{},
		&WebsiteSettings{},
		&ShopByCategoryTile{},
		&HomePageSection{},
		&GoogleDriveCredentials{},
	)
	utils.ErrorPanic(err)
}
