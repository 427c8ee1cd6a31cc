package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"bitbucket.org/mmdatafocus/webshop_backend/workflow"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// setupIntegrationDB boots a throwaway MySQL container, wires the config env,
// connects and migrates. Skipped unless INTEGRATION_TESTS=1.
func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "webshop_test")

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}
	models.MigrateTable()
	return db
}

// seedCustomer creates a customer linked to a portal user and returns the
// customer plus a context carrying that user's identity.
func seedCustomer(t *testing.T, ctx context.Context, db *gorm.DB, username string) (*models.Customer, context.Context) {
	t.Helper()
	customer := &models.Customer{Name: "Test Customer", CustomerType: "Individual", Email: username}
	if err := db.WithContext(ctx).Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := models.LinkPortalUser(ctx, db, customer.ID, username); err != nil {
		t.Fatalf("link portal user: %v", err)
	}
	return customer, utils.SetUsernameInContext(ctx, username)
}

func TestSyncCartToQuotation_Idempotent(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	customer, ctx := seedCustomer(t, ctx, db, "cart@test.local")

	first, err := workflow.SyncCartToQuotation(ctx, db, []workflow.CartLine{
		{ItemCode: "WIDGET", Qty: decimal.NewFromInt(2), Rate: decimal.NewFromInt(10)},
		{ItemCode: "GADGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(5)},
	})
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if !first.GrandTotal.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("first sync grand_total = %s, expected 25", first.GrandTotal)
	}

	second, err := workflow.SyncCartToQuotation(ctx, db, []workflow.CartLine{
		{ItemCode: "WIDGET", Qty: decimal.NewFromInt(3), Rate: decimal.NewFromInt(10)},
	})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.QuotationId != first.QuotationId {
		t.Fatalf("second sync created a new quotation (%d != %d)", second.QuotationId, first.QuotationId)
	}
	if !second.GrandTotal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("second sync grand_total = %s, expected 30", second.GrandTotal)
	}

	var draftCount int64
	if err := db.Model(&models.Quotation{}).
		Where("customer_id = ? AND docstatus = ?", customer.ID, models.DocStatusDraft).
		Count(&draftCount).Error; err != nil {
		t.Fatalf("count drafts: %v", err)
	}
	if draftCount != 1 {
		t.Fatalf("expected exactly 1 draft quotation, got %d", draftCount)
	}

	quotation, err := models.FindDraftWebQuotation(ctx, db, customer.ID)
	if err != nil {
		t.Fatalf("FindDraftWebQuotation: %v", err)
	}
	if len(quotation.Items) != 1 || quotation.Items[0].ItemCode != "WIDGET" {
		t.Fatalf("second sync must replace the lines, got %+v", quotation.Items)
	}
	if !quotation.Items[0].Qty.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("line qty = %s, expected 3", quotation.Items[0].Qty)
	}
}

func TestPlaceOrder_Converts(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	customer, ctx := seedCustomer(t, ctx, db, "order@test.local")

	if err := db.Create(&models.Warehouse{Name: "Main Store", IsGroup: false}).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	if err := db.Create(&models.Bin{ItemCode: "WIDGET", Warehouse: "Main Store", ActualQty: decimal.NewFromInt(4)}).Error; err != nil {
		t.Fatalf("create bin: %v", err)
	}

	synced, err := workflow.SyncCartToQuotation(ctx, db, []workflow.CartLine{
		{ItemCode: "WIDGET", Qty: decimal.NewFromInt(2), Rate: decimal.NewFromInt(10)},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	result, err := workflow.PlaceOrder(ctx, db, synced.QuotationId, nil)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if !result.GrandTotal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("order grand_total = %s, expected 20", result.GrandTotal)
	}

	quotation, err := models.GetQuotationById(ctx, db, synced.QuotationId)
	if err != nil {
		t.Fatalf("reload quotation: %v", err)
	}
	if quotation.Docstatus != models.DocStatusSubmitted {
		t.Fatalf("quotation docstatus = %d, expected submitted", quotation.Docstatus)
	}

	var order models.SalesOrder
	if err := db.Preload("Items").First(&order, result.SalesOrderId).Error; err != nil {
		t.Fatalf("load sales order: %v", err)
	}
	if order.CustomerId != customer.ID || order.QuotationId != synced.QuotationId {
		t.Fatalf("sales order not linked back: %+v", order)
	}
	if len(order.Items) != 1 || order.Items[0].Warehouse != "Main Store" {
		t.Fatalf("expected the stocked warehouse on the order line, got %+v", order.Items)
	}

	var invoice models.SalesInvoice
	if err := db.Preload("Items").First(&invoice, result.SalesInvoiceId).Error; err != nil {
		t.Fatalf("load sales invoice: %v", err)
	}
	if !invoice.UpdateStock {
		t.Fatal("invoice must carry update_stock=true")
	}
	if !invoice.GrandTotal.Equal(order.GrandTotal) {
		t.Fatalf("invoice total %s != order total %s", invoice.GrandTotal, order.GrandTotal)
	}

	// A second attempt on the now-submitted quotation is rejected.
	if _, err := workflow.PlaceOrder(ctx, db, synced.QuotationId, nil); !errors.Is(err, utils.ErrInvalidState) {
		t.Fatalf("replaying the conversion should fail with ErrInvalidState, got %v", err)
	}
}

func TestPlaceOrder_RollbackLeavesDraft(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	_, ctx = seedCustomer(t, ctx, db, "rollback@test.local")

	synced, err := workflow.SyncCartToQuotation(ctx, db, []workflow.CartLine{
		{ItemCode: "WIDGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10)},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	quotation, err := models.GetQuotationById(ctx, db, synced.QuotationId)
	if err != nil {
		t.Fatalf("load quotation: %v", err)
	}

	// Run the full conversion, then fail the transaction after it succeeded.
	// Everything it wrote must roll back.
	errInjected := errors.New("boom after conversion")
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var result workflow.PlaceOrderResult
		if err := workflow.ConvertQuotation(ctx, tx, quotation, nil, &result); err != nil {
			t.Fatalf("ConvertQuotation: %v", err)
		}
		return errInjected
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}

	reloaded, err := models.GetQuotationById(ctx, db, synced.QuotationId)
	if err != nil {
		t.Fatalf("reload quotation: %v", err)
	}
	if reloaded.Docstatus != models.DocStatusDraft {
		t.Fatalf("quotation docstatus = %d after rollback, expected draft", reloaded.Docstatus)
	}

	var orders, invoices int64
	if err := db.Model(&models.SalesOrder{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := db.Model(&models.SalesInvoice{}).Count(&invoices).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if orders != 0 || invoices != 0 {
		t.Fatalf("rollback leaked documents (orders=%d invoices=%d)", orders, invoices)
	}
}

// Two conversions of one quotation can both pass the read-side draft check
// before either commits. The submit inside the transaction flips draft to
// submitted conditionally, so the loser must fail and write nothing.
func TestConvertQuotation_SecondConversionFails(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	_, ctx = seedCustomer(t, ctx, db, "race@test.local")

	synced, err := workflow.SyncCartToQuotation(ctx, db, []workflow.CartLine{
		{ItemCode: "WIDGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10)},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	// Both contenders load the quotation while it is still a draft.
	quotation, err := models.GetQuotationById(ctx, db, synced.QuotationId)
	if err != nil {
		t.Fatalf("load quotation: %v", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var result workflow.PlaceOrderResult
		return workflow.ConvertQuotation(ctx, tx, quotation, nil, &result)
	})
	if err != nil {
		t.Fatalf("first conversion: %v", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var result workflow.PlaceOrderResult
		return workflow.ConvertQuotation(ctx, tx, quotation, nil, &result)
	})
	if !errors.Is(err, utils.ErrInvalidState) {
		t.Fatalf("second conversion: got %v, expected ErrInvalidState", err)
	}

	var orders, invoices int64
	if err := db.Model(&models.SalesOrder{}).Where("quotation_id = ?", synced.QuotationId).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := db.Model(&models.SalesInvoice{}).Count(&invoices).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if orders != 1 || invoices != 1 {
		t.Fatalf("expected exactly one order and invoice, got orders=%d invoices=%d", orders, invoices)
	}
}

func TestUnpublishSweep_TogglesBothDirections(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()

	// Discontinued, sold out, still published: must go dark.
	if err := db.Create(&models.Item{
		ItemCode: "GOING-DARK", ItemName: "Going Dark",
		IsStockItem: true, Discontinued: true, Published: true,
	}).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	// Discontinued, unpublished, but stock came back: must return.
	if err := db.Create(&models.Item{
		ItemCode: "COMING-BACK", ItemName: "Coming Back",
		IsStockItem: true, Discontinued: true, Published: false,
	}).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	if err := db.Create(&models.Bin{ItemCode: "COMING-BACK", Warehouse: "Stores", ActualQty: decimal.NewFromInt(5)}).Error; err != nil {
		t.Fatalf("seed bin: %v", err)
	}

	// Discontinued, sold out, but production is running: stays up.
	if err := db.Create(&models.Item{
		ItemCode: "IN-PRODUCTION", ItemName: "In Production",
		IsStockItem: true, Discontinued: true, Published: true,
	}).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	if err := db.Create(&models.WorkOrder{
		ProductionItem: "IN-PRODUCTION", Status: models.WorkOrderStatusInProcess,
		Qty: decimal.NewFromInt(10),
	}).Error; err != nil {
		t.Fatalf("seed work order: %v", err)
	}

	result, err := workflow.UnpublishSweep(ctx, db)
	if err != nil {
		t.Fatalf("UnpublishSweep: %v", err)
	}
	if result.Scanned != 3 {
		t.Fatalf("scanned = %d, expected 3", result.Scanned)
	}
	if result.Unpublished != 1 || result.Republished != 1 || result.Failed != 0 {
		t.Fatalf("unexpected sweep result: %+v", result)
	}

	check := func(code string, wantPublished bool) {
		t.Helper()
		item, err := models.GetItemByCode(ctx, db, code)
		if err != nil {
			t.Fatalf("reload %s: %v", code, err)
		}
		if item.Published != wantPublished {
			t.Fatalf("%s published = %v, expected %v", code, item.Published, wantPublished)
		}
	}
	check("GOING-DARK", false)
	check("COMING-BACK", true)
	check("IN-PRODUCTION", true)

	// A second sweep is a no-op.
	again, err := workflow.UnpublishSweep(ctx, db)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again.Unpublished != 0 || again.Republished != 0 {
		t.Fatalf("second sweep must not toggle anything: %+v", again)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("webshop-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=webshop_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
