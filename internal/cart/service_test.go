package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/brightgoods/storefront-backend/internal/storage"
	pkgerrors "github.com/brightgoods/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc, err := NewService(store, nil, nil, "storefront")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, store
}

func price(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestGetCartEmptyByDefault(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	got, err := svc.GetCart(context.Background(), "c_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 || got.ItemCount() != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}
	if !got.Total().IsZero() {
		t.Fatalf("expected zero total, got %s", got.Total())
	}
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	input := AddItemInput{ProductID: "sku-1", Name: "Mug", UnitPrice: price("12.50"), Quantity: 1}
	if _, err := svc.AddItem(ctx, "c_1", input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input.Quantity = 2
	got, err := svc.AddItem(ctx, "c_1", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Items) != 1 {
		t.Fatalf("expected one line item, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", got.Items[0].Quantity)
	}
	if got.ItemCount() != 3 {
		t.Fatalf("expected item count 3, got %d", got.ItemCount())
	}
	if !got.Total().Equal(price("37.50")) {
		t.Fatalf("unexpected total: %s", got.Total())
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []AddItemInput{
		{ProductID: "", Quantity: 1},
		{ProductID: "sku-1", Quantity: 0},
		{ProductID: "sku-1", Quantity: -2},
		{ProductID: "sku-1", Quantity: 1, UnitPrice: price("-1")},
	}
	for _, input := range cases {
		_, err := svc.AddItem(ctx, "c_1", input)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("input %+v: expected validation error, got %v", input, err)
		}
	}

	// Rejections must not write anything.
	got, err := svc.GetCart(ctx, "c_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected cart untouched, got %+v", got.Items)
	}
}

func TestUpdateItemQuantitySetsAbsoluteValue(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-1", UnitPrice: price("5"), Quantity: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.UpdateItemQuantity(ctx, "c_1", "sku-1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", got.Items[0].Quantity)
	}
}

func TestUpdateItemQuantityZeroRemovesItem(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-1", UnitPrice: price("5"), Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.UpdateItemQuantity(ctx, "c_1", "sku-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected item removed, got %+v", got.Items)
	}
}

func TestRemoveItemAbsentProductIsNoOp(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-1", UnitPrice: price("5"), Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.RemoveItem(ctx, "c_1", "sku-missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected existing item kept, got %+v", got.Items)
	}
}

func TestClearCartIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-1", UnitPrice: price("5"), Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ClearCart(ctx, "c_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ClearCart(ctx, "c_1"); err != nil {
		t.Fatalf("clearing an empty cart must succeed: %v", err)
	}

	got, err := svc.GetCart(ctx, "c_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", got.Items)
	}
}

func TestMutationsBumpVersion(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-1", UnitPrice: price("5"), Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.UpdateItemQuantity(ctx, "c_1", "sku-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Version <= first.Version {
		t.Fatalf("expected version to increase: %d then %d", first.Version, second.Version)
	}
}

func TestCartsAreScopedByClient(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-1", UnitPrice: price("5"), Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := svc.GetCart(ctx, "c_2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other.Items) != 0 {
		t.Fatalf("expected other client's cart empty, got %+v", other.Items)
	}
}

func TestCorruptRecordReadsAsEmptyCart(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()
	if err := store.Set(ctx, "storefront:cart:c_1", "{not json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetCart(ctx, "c_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart for corrupt record, got %+v", got.Items)
	}

	// The next mutation overwrites the corrupt record.
	updated, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-1", UnitPrice: price("5"), Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("expected recovered cart, got %+v", updated.Items)
	}
}

func TestItemCountAndTotalHelpers(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-1", UnitPrice: price("2.25"), Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(ctx, "c_1", AddItemInput{ProductID: "sku-2", UnitPrice: price("10"), Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := svc.ItemCount(ctx, "c_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	total, err := svc.Total(ctx, "c_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.Equal(price("14.50")) {
		t.Fatalf("unexpected total: %s", total)
	}
}

func TestServiceRequiresClientID(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetCart(ctx, ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.ClearCart(ctx, ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
