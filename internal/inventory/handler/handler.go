package handler

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/fekuna/omnipos-restock-service/internal/catalog"
	"github.com/fekuna/omnipos-restock-service/internal/inventory"
	"github.com/fekuna/omnipos-restock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-restock-service/internal/logger"
	"github.com/fekuna/omnipos-restock-service/internal/model"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := createInputFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	p, err := h.uc.CreateProduct(ctx, input)
	if err != nil {
		return nil, h.mapError(err)
	}

	return h.respond(map[string]any{
		"message": "Product added successfully",
		"product": productToMap(p),
	})
}

func (h *InventoryHandler) GetInventoryStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := stringField(req, "product_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	view, err := h.uc.GetStatus(ctx, productID)
	if err != nil {
		return nil, h.mapError(err)
	}

	return h.respond(statusViewToMap(view))
}

func (h *InventoryHandler) PurchaseProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := stringField(req, "product_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	qty, err := intField(req, "quantity")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	p, err := h.uc.Purchase(ctx, &dto.PurchaseInput{ProductID: productID, Quantity: qty})
	if err != nil {
		return nil, h.mapError(err)
	}

	return h.respond(map[string]any{
		"message": "Purchase successful",
		"product": productToMap(p),
	})
}

func (h *InventoryHandler) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filters := &dto.ProductFilters{}
	if v, ok := req.GetFields()["status"]; ok {
		filters.Status = model.Status(v.GetStringValue())
	}

	items, err := h.uc.ListProducts(ctx, filters)
	if err != nil {
		return nil, h.mapError(err)
	}

	entries := make([]any, len(items))
	for i := range items {
		entries[i] = statusViewToMap(&items[i])
	}
	return h.respond(map[string]any{"products": entries})
}

func (h *InventoryHandler) respond(body map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(body)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func (h *InventoryHandler) mapError(err error) error {
	switch {
	case errors.Is(err, inventory.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, inventory.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, inventory.ErrStockLimit):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, catalog.ErrPersistence):
		return status.Error(codes.Internal, "failed to persist inventory")
	}
	h.logger.Error("unexpected inventory error", zap.Error(err))
	return status.Errorf(codes.Internal, "internal error: %v", err)
}

func createInputFromStruct(req *structpb.Struct) (*dto.CreateProductInput, error) {
	var (
		in  dto.CreateProductInput
		err error
	)
	if in.ProductID, err = stringField(req, "product_id"); err != nil {
		return nil, err
	}
	if in.Name, err = stringField(req, "name"); err != nil {
		return nil, err
	}
	if in.StockQuantity, err = intField(req, "stock_quantity"); err != nil {
		return nil, err
	}
	if in.MinThreshold, err = intField(req, "min_threshold"); err != nil {
		return nil, err
	}
	if in.RestockQuantity, err = intField(req, "restock_quantity"); err != nil {
		return nil, err
	}
	priority, err := stringField(req, "priority")
	if err != nil {
		return nil, err
	}
	in.Priority = model.Priority(priority)
	return &in, nil
}

func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s.StringValue, nil
}

func intField(req *structpb.Struct, key string) (int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if f > model.MaxQuantity || f < math.MinInt32 {
		return 0, fmt.Errorf("%s is out of range", key)
	}
	return int(f), nil
}

func productToMap(p *model.Product) map[string]any {
	return map[string]any{
		"product_id":       p.ProductID,
		"name":             p.Name,
		"stock_quantity":   p.StockQuantity,
		"min_threshold":    p.MinThreshold,
		"restock_quantity": p.RestockQuantity,
		"priority":         string(p.Priority),
		"category":         string(p.Category),
	}
}

func statusViewToMap(v *model.StatusView) map[string]any {
	return map[string]any{
		"product_id":     v.ProductID,
		"stock_quantity": v.StockQuantity,
		"status":         string(v.Status),
		"priority":       string(v.Priority),
	}
}
