package export

import (
	"fmt"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testDataset() *Dataset {
	return &Dataset{
		ID:         "orders",
		Name:       "Orders",
		Enabled:    true,
		Popularity: 90,
		RowsPerDay: 1000,
		Fields: []Field{
			{Key: "order_id", Label: "Order ID", Type: FieldString, Category: CategoryGeneral, Default: true},
			{Key: "placed_at", Label: "Placed At", Type: FieldDatetime, Category: CategoryDates, Default: true},
			{Key: "channel", Label: "Channel", Type: FieldEnum, Category: CategoryStatus, Values: []string{"dine_in", "takeout", "delivery", "catering"}, Default: true},
			{Key: "total", Label: "Total", Type: FieldCurrency, Category: CategoryFinancial, Default: true},
			{Key: "item_count", Label: "Item Count", Type: FieldNumber, Category: CategoryGeneral},
			{Key: "is_first_order", Label: "First Order", Type: FieldBoolean, Category: CategoryStatus},
			{Key: "customer_email", Label: "Customer Email", Type: FieldString, Category: CategoryPII, PII: true},
			{Key: "customer_name", Label: "Customer Name", Type: FieldString, Category: CategoryPII, PII: true},
		},
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat := NewCatalog()
	if err := cat.Register(*testDataset()); err != nil {
		t.Fatalf("Register(orders) error = %v", err)
	}
	disabled := Dataset{
		ID:   "staff_shifts",
		Name: "Staff Shifts",
		Fields: []Field{
			{Key: "shift_id", Label: "Shift ID", Type: FieldString, Default: true},
		},
	}
	if err := cat.Register(disabled); err != nil {
		t.Fatalf("Register(staff_shifts) error = %v", err)
	}
	return cat
}

func testConfig(t *testing.T, ds *Dataset) Config {
	t.Helper()
	cfg, err := NewConfig(ds, testNow)
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	return cfg
}

// sequentialIDs makes filter ids predictable for the duration of a test.
func sequentialIDs(t *testing.T) {
	t.Helper()
	n := 0
	prev := newFilterID
	newFilterID = func() string {
		n++
		return fmt.Sprintf("f%d", n)
	}
	t.Cleanup(func() { newFilterID = prev })
}
