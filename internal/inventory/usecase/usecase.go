package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-restock-service/internal/auth"
	"github.com/fekuna/omnipos-restock-service/internal/catalog"
	"github.com/fekuna/omnipos-restock-service/internal/inventory"
	"github.com/fekuna/omnipos-restock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-restock-service/internal/logger"
	"github.com/fekuna/omnipos-restock-service/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var highPriorityRestockFactor = decimal.RequireFromString("1.5")

type inventoryUseCase struct {
	// mu covers every operation end to end, reads included, so a status query
	// never sees a purchase between its decrement and its restock.
	mu       sync.Mutex
	store    *catalog.Store
	recorder inventory.EventRecorder
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewInventoryUseCase(store *catalog.Store, recorder inventory.EventRecorder, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		store:    store,
		recorder: recorder,
		logger:   log,
		now:      time.Now,
	}
}

// RestockAmount is the batch added when p falls under its threshold:
// restock_quantity, or 1.5x truncated toward zero for high priority.
func RestockAmount(p model.Product) int {
	return int(restockAmount(p).IntPart())
}

func restockAmount(p model.Product) decimal.Decimal {
	amount := decimal.NewFromInt(int64(p.RestockQuantity))
	if p.Priority != model.PriorityHigh {
		return amount
	}
	return amount.Mul(highPriorityRestockFactor).Truncate(0)
}

func (uc *inventoryUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if err := validateCreate(input); err != nil {
		productID := ""
		if input != nil {
			productID = input.ProductID
		}
		uc.logger.Warn("rejected product", zap.String("product_id", productID), zap.Error(err))
		uc.record(ctx, model.InventoryEvent{
			Operation: model.OperationCreateProduct,
			Outcome:   model.OutcomeInvalidInput,
			ProductID: productID,
			Notes:     err.Error(),
		})
		return nil, err
	}

	threshold := input.MinThreshold
	if input.Priority == model.PriorityHigh && threshold < model.HighPriorityMinThreshold {
		threshold = model.HighPriorityMinThreshold
		uc.logger.Info("raised min_threshold for high priority product",
			zap.String("product_id", input.ProductID),
			zap.Int("requested", input.MinThreshold),
			zap.Int("min_threshold", threshold),
		)
	}

	p := model.Product{
		ProductID:       input.ProductID,
		Name:            input.Name,
		StockQuantity:   input.StockQuantity,
		MinThreshold:    threshold,
		RestockQuantity: input.RestockQuantity,
		Priority:        input.Priority,
		Category:        model.CategoryFor(input.RestockQuantity),
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	prev, existed := uc.store.Get(p.ProductID)
	uc.store.Put(p)
	if err := uc.store.Save(ctx); err != nil {
		if existed {
			uc.store.Put(prev)
		} else {
			uc.store.Delete(p.ProductID)
		}
		uc.persistenceFailed(ctx, model.OperationCreateProduct, p.ProductID, err)
		return nil, err
	}

	before := 0
	if existed {
		before = prev.StockQuantity
	}
	uc.logger.Info("stored product",
		zap.String("product_id", p.ProductID),
		zap.String("category", string(p.Category)),
		zap.Int("min_threshold", p.MinThreshold),
		zap.Bool("replaced", existed),
	)
	uc.record(ctx, model.InventoryEvent{
		Operation:      model.OperationCreateProduct,
		Outcome:        model.OutcomeSuccess,
		ProductID:      p.ProductID,
		QuantityBefore: before,
		QuantityAfter:  p.StockQuantity,
		QuantityChange: p.StockQuantity - before,
		Notes:          fmt.Sprintf("category=%s min_threshold=%d replaced=%t", p.Category, p.MinThreshold, existed),
	})

	return &p, nil
}

func (uc *inventoryUseCase) GetStatus(ctx context.Context, productID string) (*model.StatusView, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	p, ok := uc.store.Get(productID)
	if !ok {
		uc.notFound(ctx, model.OperationGetStatus, productID)
		return nil, fmt.Errorf("%w: %s", inventory.ErrNotFound, productID)
	}

	view := p.StatusView()
	uc.logger.Debug("retrieved status",
		zap.String("product_id", productID),
		zap.Int("stock_quantity", view.StockQuantity),
		zap.String("status", string(view.Status)),
	)
	return &view, nil
}

func (uc *inventoryUseCase) Purchase(ctx context.Context, input *dto.PurchaseInput) (*model.Product, error) {
	if input == nil || input.Quantity <= 0 || input.Quantity > model.MaxQuantity {
		productID, qty := "", 0
		if input != nil {
			productID, qty = input.ProductID, input.Quantity
		}
		err := fmt.Errorf("%w: quantity must be between 1 and %d, got %d", inventory.ErrInvalidInput, model.MaxQuantity, qty)
		uc.logger.Warn("rejected purchase", zap.String("product_id", productID), zap.Error(err))
		uc.record(ctx, model.InventoryEvent{
			Operation:      model.OperationPurchase,
			Outcome:        model.OutcomeInvalidInput,
			ProductID:      productID,
			QuantityChange: -qty,
			Notes:          err.Error(),
		})
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	prev, ok := uc.store.Get(input.ProductID)
	if !ok {
		uc.notFound(ctx, model.OperationPurchase, input.ProductID)
		return nil, fmt.Errorf("%w: %s", inventory.ErrNotFound, input.ProductID)
	}

	if prev.StockQuantity < input.Quantity {
		err := fmt.Errorf("%w: %d available, %d requested", inventory.ErrInsufficientStock, prev.StockQuantity, input.Quantity)
		uc.logger.Warn("insufficient stock",
			zap.String("product_id", input.ProductID),
			zap.Int("available", prev.StockQuantity),
			zap.Int("requested", input.Quantity),
		)
		uc.record(ctx, model.InventoryEvent{
			Operation:      model.OperationPurchase,
			Outcome:        model.OutcomeInsufficientStock,
			ProductID:      input.ProductID,
			QuantityBefore: prev.StockQuantity,
			QuantityAfter:  prev.StockQuantity,
			QuantityChange: -input.Quantity,
			Notes:          err.Error(),
		})
		return nil, err
	}

	p := prev
	p.StockQuantity -= input.Quantity
	afterPurchase := p.StockQuantity

	restocked := 0
	if p.StockQuantity < p.MinThreshold {
		amount := restockAmount(p)
		if amount.GreaterThan(decimal.NewFromInt(int64(model.MaxQuantity - p.StockQuantity))) {
			err := fmt.Errorf("%w: restock of %s onto %d would pass %d", inventory.ErrStockLimit, amount, p.StockQuantity, model.MaxQuantity)
			uc.logger.Warn("restock would exceed stock limit",
				zap.String("product_id", p.ProductID),
				zap.Int("stock_quantity", p.StockQuantity),
				zap.String("restock_amount", amount.String()),
			)
			uc.record(ctx, model.InventoryEvent{
				Operation:      model.OperationPurchase,
				Outcome:        model.OutcomeStockLimit,
				ProductID:      p.ProductID,
				QuantityBefore: prev.StockQuantity,
				QuantityAfter:  prev.StockQuantity,
				QuantityChange: -input.Quantity,
				Notes:          err.Error(),
			})
			return nil, err
		}
		restocked = int(amount.IntPart())
		p.StockQuantity += restocked
	}

	uc.store.Put(p)
	if err := uc.store.Save(ctx); err != nil {
		uc.store.Put(prev)
		uc.persistenceFailed(ctx, model.OperationPurchase, p.ProductID, err)
		return nil, err
	}

	uc.logger.Info("purchased product",
		zap.String("product_id", p.ProductID),
		zap.Int("quantity", input.Quantity),
		zap.Int("stock_quantity", afterPurchase),
	)
	uc.record(ctx, model.InventoryEvent{
		Operation:      model.OperationPurchase,
		Outcome:        model.OutcomeSuccess,
		ProductID:      p.ProductID,
		QuantityBefore: prev.StockQuantity,
		QuantityAfter:  afterPurchase,
		QuantityChange: -input.Quantity,
		Notes:          input.Reference,
	})

	if restocked > 0 {
		uc.logger.Info("restocked product",
			zap.String("product_id", p.ProductID),
			zap.Int("restock_amount", restocked),
			zap.Int("stock_quantity", p.StockQuantity),
		)
		uc.record(ctx, model.InventoryEvent{
			Operation:      model.OperationRestock,
			Outcome:        model.OutcomeSuccess,
			ProductID:      p.ProductID,
			QuantityBefore: afterPurchase,
			QuantityAfter:  p.StockQuantity,
			QuantityChange: restocked,
			Notes:          fmt.Sprintf("priority=%s min_threshold=%d", p.Priority, p.MinThreshold),
		})
	}

	return &p, nil
}

func (uc *inventoryUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.StatusView, error) {
	var want model.Status
	if filters != nil && filters.Status != "" {
		if !filters.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", inventory.ErrInvalidInput, filters.Status)
		}
		want = filters.Status
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	items := make([]model.StatusView, 0, uc.store.Len())
	for _, p := range uc.store.List() {
		view := p.StatusView()
		if want != "" && view.Status != want {
			continue
		}
		items = append(items, view)
	}
	return items, nil
}

func validateCreate(input *dto.CreateProductInput) error {
	switch {
	case input == nil:
		return fmt.Errorf("%w: missing product", inventory.ErrInvalidInput)
	case input.ProductID == "":
		return fmt.Errorf("%w: product_id is required", inventory.ErrInvalidInput)
	case input.StockQuantity < 0:
		return fmt.Errorf("%w: stock_quantity must not be negative", inventory.ErrInvalidInput)
	case input.MinThreshold < 0:
		return fmt.Errorf("%w: min_threshold must not be negative", inventory.ErrInvalidInput)
	case input.RestockQuantity <= 0:
		return fmt.Errorf("%w: restock_quantity must be positive", inventory.ErrInvalidInput)
	case input.StockQuantity > model.MaxQuantity, input.MinThreshold > model.MaxQuantity, input.RestockQuantity > model.MaxQuantity:
		return fmt.Errorf("%w: quantities must not exceed %d", inventory.ErrInvalidInput, model.MaxQuantity)
	case !input.Priority.Valid():
		return fmt.Errorf("%w: priority must be 'high' or 'low', got %q", inventory.ErrInvalidInput, input.Priority)
	}
	return nil
}

func (uc *inventoryUseCase) notFound(ctx context.Context, op model.Operation, productID string) {
	uc.logger.Warn("product not found", zap.String("operation", string(op)), zap.String("product_id", productID))
	uc.record(ctx, model.InventoryEvent{
		Operation: op,
		Outcome:   model.OutcomeNotFound,
		ProductID: productID,
	})
}

func (uc *inventoryUseCase) persistenceFailed(ctx context.Context, op model.Operation, productID string, err error) {
	uc.logger.Error("failed to persist catalog",
		zap.String("operation", string(op)),
		zap.String("product_id", productID),
		zap.Error(err),
	)
	uc.record(ctx, model.InventoryEvent{
		Operation: op,
		Outcome:   model.OutcomePersistenceFailure,
		ProductID: productID,
		Notes:     err.Error(),
	})
}

func (uc *inventoryUseCase) record(ctx context.Context, ev model.InventoryEvent) {
	if uc.recorder == nil {
		return
	}
	ev.ID = uuid.New().String()
	ev.Actor = auth.GetActor(ctx)
	ev.CreatedAt = uc.now().UTC()
	if err := uc.recorder.Record(ctx, &ev); err != nil {
		uc.logger.Warn("failed to record inventory event",
			zap.String("operation", string(ev.Operation)),
			zap.String("product_id", ev.ProductID),
			zap.Error(err),
		)
	}
}
