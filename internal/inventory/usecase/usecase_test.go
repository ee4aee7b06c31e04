package usecase

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-restock-service/internal/auth"
	"github.com/fekuna/omnipos-restock-service/internal/catalog"
	"github.com/fekuna/omnipos-restock-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-restock-service/internal/inventory"
	"github.com/fekuna/omnipos-restock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-restock-service/internal/logger"
	"github.com/fekuna/omnipos-restock-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyRepository struct {
	saved   map[string]model.Product
	saveErr error
	saves   int
}

func (r *flakyRepository) Load(ctx context.Context) (map[string]model.Product, error) {
	out := make(map[string]model.Product, len(r.saved))
	for k, v := range r.saved {
		out[k] = v
	}
	return out, nil
}

func (r *flakyRepository) Save(ctx context.Context, products map[string]model.Product) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.saved = products
	return nil
}

type captureRecorder struct {
	mu     sync.Mutex
	events []model.InventoryEvent
	err    error
}

func (c *captureRecorder) Record(ctx context.Context, ev *model.InventoryEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, *ev)
	return c.err
}

func (c *captureRecorder) last() model.InventoryEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[len(c.events)-1]
}

type fixture struct {
	uc       inventory.UseCase
	repo     *flakyRepository
	recorder *captureRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := &flakyRepository{}
	rec := &captureRecorder{}
	store := catalog.NewStore(repo)
	require.NoError(t, store.Load(context.Background()))
	return &fixture{
		uc:       NewInventoryUseCase(store, rec, logger.NewNop()),
		repo:     repo,
		recorder: rec,
	}
}

func (f *fixture) create(t *testing.T, in dto.CreateProductInput) *model.Product {
	t.Helper()
	p, err := f.uc.CreateProduct(context.Background(), &in)
	require.NoError(t, err)
	return p
}

func a1() dto.CreateProductInput {
	return dto.CreateProductInput{
		ProductID: "A1", Name: "Widget", StockQuantity: 5, MinThreshold: 3,
		RestockQuantity: 20, Priority: model.PriorityLow,
	}
}

func a2() dto.CreateProductInput {
	return dto.CreateProductInput{
		ProductID: "A2", Name: "Gadget", StockQuantity: 5, MinThreshold: 3,
		RestockQuantity: 60, Priority: model.PriorityHigh,
	}
}

func TestCreateProductLowPriorityKeepsThreshold(t *testing.T) {
	f := newFixture(t)

	p := f.create(t, a1())

	assert.Equal(t, model.CategoryLowVolume, p.Category)
	assert.Equal(t, 3, p.MinThreshold)
	assert.Equal(t, 1, f.repo.saves)
	assert.Equal(t, *p, f.repo.saved["A1"])
}

func TestCreateProductHighPriorityRaisesThreshold(t *testing.T) {
	f := newFixture(t)

	p := f.create(t, a2())

	assert.Equal(t, model.CategoryHighVolume, p.Category)
	assert.Equal(t, 10, p.MinThreshold)
}

func TestCreateProductHighPriorityKeepsLargerThreshold(t *testing.T) {
	f := newFixture(t)
	in := a2()
	in.MinThreshold = 25

	p := f.create(t, in)

	assert.Equal(t, 25, p.MinThreshold)
}

func TestCreateProductCategoryBoundary(t *testing.T) {
	f := newFixture(t)
	for restock, want := range map[int]model.Category{
		1:  model.CategoryLowVolume,
		50: model.CategoryLowVolume,
		51: model.CategoryHighVolume,
	} {
		in := a1()
		in.RestockQuantity = restock
		p := f.create(t, in)
		assert.Equal(t, want, p.Category, "restock_quantity=%d", restock)
	}
}

func TestCreateProductOverwrites(t *testing.T) {
	f := newFixture(t)
	f.create(t, a2())

	in := a1()
	in.ProductID = "A2"
	p := f.create(t, in)

	view, err := f.uc.GetStatus(context.Background(), "A2")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityLow, view.Priority)
	assert.Equal(t, 3, p.MinThreshold)
	assert.Equal(t, "category=low_volume min_threshold=3 replaced=true", f.recorder.last().Notes)
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CreateProductInput)
	}{
		{"negative stock", func(in *dto.CreateProductInput) { in.StockQuantity = -1 }},
		{"negative threshold", func(in *dto.CreateProductInput) { in.MinThreshold = -1 }},
		{"zero restock", func(in *dto.CreateProductInput) { in.RestockQuantity = 0 }},
		{"negative restock", func(in *dto.CreateProductInput) { in.RestockQuantity = -5 }},
		{"unknown priority", func(in *dto.CreateProductInput) { in.Priority = "urgent" }},
		{"empty id", func(in *dto.CreateProductInput) { in.ProductID = "" }},
		{"stock above max", func(in *dto.CreateProductInput) { in.StockQuantity = model.MaxQuantity + 1 }},
		{"threshold above max", func(in *dto.CreateProductInput) { in.MinThreshold = math.MaxInt }},
		{"restock above max", func(in *dto.CreateProductInput) { in.RestockQuantity = math.MaxInt }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := a1()
			tt.mutate(&in)

			p, err := f.uc.CreateProduct(context.Background(), &in)

			assert.Nil(t, p)
			assert.ErrorIs(t, err, inventory.ErrInvalidInput)
			assert.Equal(t, 0, f.repo.saves)
			_, err = f.uc.GetStatus(context.Background(), in.ProductID)
			assert.ErrorIs(t, err, inventory.ErrNotFound)
		})
	}
}

func TestCreateProductNilInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateProduct(context.Background(), nil)

	assert.ErrorIs(t, err, inventory.ErrInvalidInput)
}

func TestCreateProductZeroValuesAllowed(t *testing.T) {
	f := newFixture(t)
	in := a1()
	in.StockQuantity = 0
	in.MinThreshold = 0

	p := f.create(t, in)

	assert.Equal(t, 0, p.StockQuantity)
	assert.Equal(t, model.StatusOutOfStock, p.Status())
}

func TestGetStatus(t *testing.T) {
	f := newFixture(t)
	f.create(t, a1())
	ctx := context.Background()

	first, err := f.uc.GetStatus(ctx, "A1")
	require.NoError(t, err)
	second, err := f.uc.GetStatus(ctx, "A1")
	require.NoError(t, err)

	assert.Equal(t, &model.StatusView{
		ProductID: "A1", StockQuantity: 5, Status: model.StatusOK, Priority: model.PriorityLow,
	}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.repo.saves, "status queries must not persist")
}

func TestGetStatusNotFound(t *testing.T) {
	f := newFixture(t)

	view, err := f.uc.GetStatus(context.Background(), "ghost")

	assert.Nil(t, view)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
	ev := f.recorder.last()
	assert.Equal(t, model.OperationGetStatus, ev.Operation)
	assert.Equal(t, model.OutcomeNotFound, ev.Outcome)
	assert.Equal(t, "ghost", ev.ProductID)
}

func TestPurchaseInsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.create(t, a2())

	p, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A2", Quantity: 7})

	assert.Nil(t, p)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	view, err := f.uc.GetStatus(context.Background(), "A2")
	require.NoError(t, err)
	assert.Equal(t, 5, view.StockQuantity)
	assert.Equal(t, 1, f.repo.saves)
}

func TestPurchaseLowPriorityRestock(t *testing.T) {
	f := newFixture(t)
	f.create(t, a1())

	p, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A1", Quantity: 3})

	require.NoError(t, err)
	assert.Equal(t, 22, p.StockQuantity)
	assert.Equal(t, 22, f.repo.saved["A1"].StockQuantity)

	n := len(f.recorder.events)
	purchase, restock := f.recorder.events[n-2], f.recorder.events[n-1]
	assert.Equal(t, model.OperationPurchase, purchase.Operation)
	assert.Equal(t, 5, purchase.QuantityBefore)
	assert.Equal(t, 2, purchase.QuantityAfter)
	assert.Equal(t, -3, purchase.QuantityChange)
	assert.Equal(t, model.OperationRestock, restock.Operation)
	assert.Equal(t, 2, restock.QuantityBefore)
	assert.Equal(t, 22, restock.QuantityAfter)
	assert.Equal(t, 20, restock.QuantityChange)
}

func TestPurchaseHighPriorityRestock(t *testing.T) {
	f := newFixture(t)
	f.create(t, a2())

	p, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A2", Quantity: 2})

	require.NoError(t, err)
	assert.Equal(t, 93, p.StockQuantity)
}

func TestPurchaseWithoutRestock(t *testing.T) {
	f := newFixture(t)
	in := a1()
	in.StockQuantity = 10
	f.create(t, in)

	p, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A1", Quantity: 7})

	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQuantity, "landing exactly on the threshold does not restock")
	assert.Equal(t, model.OperationPurchase, f.recorder.last().Operation)
}

func TestPurchaseToZeroWithZeroThresholdDoesNotRestock(t *testing.T) {
	f := newFixture(t)
	in := a1()
	in.MinThreshold = 0
	f.create(t, in)

	p, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A1", Quantity: 5})

	require.NoError(t, err)
	assert.Equal(t, 0, p.StockQuantity)
	assert.Equal(t, model.StatusOutOfStock, p.Status())
}

func TestPurchaseToZeroRestocks(t *testing.T) {
	f := newFixture(t)
	f.create(t, a1())

	p, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A1", Quantity: 5})

	require.NoError(t, err)
	assert.Equal(t, 20, p.StockQuantity)
}

func TestPurchaseInvalidQuantity(t *testing.T) {
	f := newFixture(t)
	f.create(t, a1())

	for _, qty := range []int{0, -4} {
		_, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A1", Quantity: qty})
		assert.ErrorIs(t, err, inventory.ErrInvalidInput)
	}
	_, err := f.uc.Purchase(context.Background(), nil)
	assert.ErrorIs(t, err, inventory.ErrInvalidInput)
}

func TestPurchaseInvalidQuantityCheckedBeforeExistence(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "ghost", Quantity: 0})

	assert.ErrorIs(t, err, inventory.ErrInvalidInput)
}

func TestPurchaseNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "ghost", Quantity: 1})

	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestPersistenceFailureRollsBackCreate(t *testing.T) {
	f := newFixture(t)
	f.repo.saveErr = errors.New("disk full")

	_, err := f.uc.CreateProduct(context.Background(), ptr(a1()))

	assert.ErrorIs(t, err, catalog.ErrPersistence)
	_, err = f.uc.GetStatus(context.Background(), "A1")
	assert.ErrorIs(t, err, inventory.ErrNotFound)
	assert.Equal(t, model.OutcomeNotFound, f.recorder.last().Outcome)
	assert.Equal(t, model.OutcomePersistenceFailure, f.recorder.events[len(f.recorder.events)-2].Outcome)
}

func TestPersistenceFailureRestoresOverwrittenProduct(t *testing.T) {
	f := newFixture(t)
	f.create(t, a2())
	f.repo.saveErr = errors.New("disk full")

	in := a1()
	in.ProductID = "A2"
	_, err := f.uc.CreateProduct(context.Background(), &in)

	assert.ErrorIs(t, err, catalog.ErrPersistence)
	view, err := f.uc.GetStatus(context.Background(), "A2")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, view.Priority)
}

func TestPersistenceFailureRollsBackPurchase(t *testing.T) {
	f := newFixture(t)
	f.create(t, a1())
	f.repo.saveErr = errors.New("disk full")

	_, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A1", Quantity: 3})

	assert.ErrorIs(t, err, catalog.ErrPersistence)
	view, err := f.uc.GetStatus(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, 5, view.StockQuantity)
}

func TestRecorderFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.recorder.err = errors.New("broker down")

	p, err := f.uc.CreateProduct(context.Background(), ptr(a1()))

	require.NoError(t, err)
	assert.Equal(t, "A1", p.ProductID)
}

func TestNilRecorderIsAllowed(t *testing.T) {
	store := catalog.NewStore(&flakyRepository{})
	uc := NewInventoryUseCase(store, nil, logger.NewNop())

	_, err := uc.CreateProduct(context.Background(), ptr(a1()))

	assert.NoError(t, err)
}

func TestEventsCarryActorAndID(t *testing.T) {
	f := newFixture(t)
	ctx := auth.WithActor(context.Background(), "clerk-7")

	_, err := f.uc.CreateProduct(ctx, ptr(a1()))
	require.NoError(t, err)

	ev := f.recorder.last()
	assert.Equal(t, "clerk-7", ev.Actor)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())
	assert.Equal(t, model.OutcomeSuccess, ev.Outcome)
	assert.Equal(t, 5, ev.QuantityAfter)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	f.create(t, a2())
	f.create(t, a1())
	out := a1()
	out.ProductID = "A0"
	out.StockQuantity = 0
	f.create(t, out)
	ctx := context.Background()

	all, err := f.uc.ListProducts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"A0", "A1", "A2"}, []string{all[0].ProductID, all[1].ProductID, all[2].ProductID})

	low, err := f.uc.ListProducts(ctx, &dto.ProductFilters{Status: model.StatusBelowThreshold})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "A2", low[0].ProductID)

	_, err = f.uc.ListProducts(ctx, &dto.ProductFilters{Status: "meh"})
	assert.ErrorIs(t, err, inventory.ErrInvalidInput)
}

func TestRestockAmount(t *testing.T) {
	tests := []struct {
		restock  int
		priority model.Priority
		want     int
	}{
		{20, model.PriorityLow, 20},
		{60, model.PriorityHigh, 90},
		{1, model.PriorityHigh, 1},
		{3, model.PriorityHigh, 4},
		{7, model.PriorityHigh, 10},
	}
	for _, tt := range tests {
		got := RestockAmount(model.Product{RestockQuantity: tt.restock, Priority: tt.priority})
		assert.Equal(t, tt.want, got, "restock=%d priority=%s", tt.restock, tt.priority)
	}
}

func TestConcurrentPurchasesDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t)
	in := a1()
	in.StockQuantity = 1000
	in.MinThreshold = 0
	f.create(t, in)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A1", Quantity: 3})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := f.uc.GetStatus(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, 700, view.StockQuantity)
}

func TestStateSurvivesRestartWithFileRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inventory.json")

	store := catalog.NewStore(repository.NewFileRepository(path))
	require.NoError(t, store.Load(ctx))
	uc := NewInventoryUseCase(store, nil, logger.NewNop())
	_, err := uc.CreateProduct(ctx, ptr(a2()))
	require.NoError(t, err)
	_, err = uc.Purchase(ctx, &dto.PurchaseInput{ProductID: "A2", Quantity: 2})
	require.NoError(t, err)

	restarted := catalog.NewStore(repository.NewFileRepository(path))
	require.NoError(t, restarted.Load(ctx))
	view, err := NewInventoryUseCase(restarted, nil, logger.NewNop()).GetStatus(ctx, "A2")
	require.NoError(t, err)
	assert.Equal(t, 93, view.StockQuantity)
	assert.Equal(t, model.StatusOK, view.Status)
}

func ptr[T any](v T) *T { return &v }

func TestPurchaseRejectsRestockPastStockLimit(t *testing.T) {
	tests := []struct {
		name string
		in   dto.CreateProductInput
	}{
		{"low priority", dto.CreateProductInput{
			ProductID: "Z1", Name: "Bulk", StockQuantity: model.MaxQuantity - 5,
			MinThreshold: model.MaxQuantity, RestockQuantity: 100, Priority: model.PriorityLow,
		}},
		{"high priority", dto.CreateProductInput{
			ProductID: "Z2", Name: "Bulk", StockQuantity: 5,
			MinThreshold: 10, RestockQuantity: model.MaxQuantity, Priority: model.PriorityHigh,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.create(t, tt.in)
			saves := f.repo.saves

			p, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: tt.in.ProductID, Quantity: 1})

			assert.Nil(t, p)
			assert.ErrorIs(t, err, inventory.ErrStockLimit)
			assert.Equal(t, saves, f.repo.saves)
			assert.Equal(t, model.OutcomeStockLimit, f.recorder.last().Outcome)

			view, err := f.uc.GetStatus(context.Background(), tt.in.ProductID)
			require.NoError(t, err)
			assert.Equal(t, tt.in.StockQuantity, view.StockQuantity)
		})
	}
}

func TestPurchaseRestockUpToStockLimit(t *testing.T) {
	f := newFixture(t)
	f.create(t, dto.CreateProductInput{
		ProductID: "Z3", Name: "Bulk", StockQuantity: model.MaxQuantity - 99,
		MinThreshold: model.MaxQuantity, RestockQuantity: 100, Priority: model.PriorityLow,
	})

	p, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "Z3", Quantity: 1})

	require.NoError(t, err)
	assert.Equal(t, model.MaxQuantity, p.StockQuantity)
}

func TestPurchaseQuantityAboveMaxIsInvalid(t *testing.T) {
	f := newFixture(t)
	f.create(t, a1())

	_, err := f.uc.Purchase(context.Background(), &dto.PurchaseInput{ProductID: "A1", Quantity: math.MaxInt})

	assert.ErrorIs(t, err, inventory.ErrInvalidInput)
}
