package handler

import (
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-restock-service/internal/auth"
	"github.com/fekuna/omnipos-restock-service/internal/catalog"
	"github.com/fekuna/omnipos-restock-service/internal/inventory"
	"github.com/fekuna/omnipos-restock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-restock-service/internal/logger"
	"github.com/fekuna/omnipos-restock-service/internal/model"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const ActorHeader = "X-User-Id"

type HTTPHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewHTTPHandler(uc inventory.UseCase, log logger.ZapLogger) *HTTPHandler {
	return &HTTPHandler{
		uc:     uc,
		logger: log,
	}
}

// NewHTTPApp builds the fiber app serving the REST surface.
func NewHTTPApp(h *HTTPHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "omnipos-restock-service",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				h.logger.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		if actor := c.Get(ActorHeader); actor != "" {
			c.SetUserContext(auth.WithActor(c.UserContext(), actor))
		}
		return c.Next()
	})

	h.Register(app)
	return app
}

func (h *HTTPHandler) Register(router fiber.Router) {
	router.Get("/healthz", h.Health)

	products := router.Group("/products")
	products.Get("/", h.ListProducts)
	products.Post("/", h.CreateProduct)
	products.Get("/:id", h.GetInventoryStatus)
	products.Post("/:id/purchase", h.PurchaseProduct)
}

type createProductRequest struct {
	ProductID       *string `json:"product_id"`
	Name            *string `json:"name"`
	StockQuantity   *int    `json:"stock_quantity"`
	MinThreshold    *int    `json:"min_threshold"`
	RestockQuantity *int    `json:"restock_quantity"`
	Priority        *string `json:"priority"`
}

func (r *createProductRequest) toInput() (*dto.CreateProductInput, error) {
	switch {
	case r.ProductID == nil:
		return nil, missingField("product_id")
	case r.Name == nil:
		return nil, missingField("name")
	case r.StockQuantity == nil:
		return nil, missingField("stock_quantity")
	case r.MinThreshold == nil:
		return nil, missingField("min_threshold")
	case r.RestockQuantity == nil:
		return nil, missingField("restock_quantity")
	case r.Priority == nil:
		return nil, missingField("priority")
	}
	return &dto.CreateProductInput{
		ProductID:       *r.ProductID,
		Name:            *r.Name,
		StockQuantity:   *r.StockQuantity,
		MinThreshold:    *r.MinThreshold,
		RestockQuantity: *r.RestockQuantity,
		Priority:        model.Priority(*r.Priority),
	}, nil
}

type purchaseRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *HTTPHandler) CreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("malformed body: %v", err))
	}
	input, err := req.toInput()
	if err != nil {
		return err
	}

	p, err := h.uc.CreateProduct(c.UserContext(), input)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(fiber.Map{
		"message": "Product added successfully",
		"product": p,
	})
}

func (h *HTTPHandler) GetInventoryStatus(c *fiber.Ctx) error {
	view, err := h.uc.GetStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(view)
}

func (h *HTTPHandler) PurchaseProduct(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("malformed body: %v", err))
	}
	if req.Quantity == nil {
		return missingField("quantity")
	}

	p, err := h.uc.Purchase(c.UserContext(), &dto.PurchaseInput{
		ProductID: c.Params("id"),
		Quantity:  *req.Quantity,
	})
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(fiber.Map{
		"message": "Purchase successful",
		"product": p,
	})
}

func (h *HTTPHandler) ListProducts(c *fiber.Ctx) error {
	items, err := h.uc.ListProducts(c.UserContext(), &dto.ProductFilters{
		Status: model.Status(c.Query("status")),
	})
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(fiber.Map{"products": items})
}

func (h *HTTPHandler) mapError(err error) error {
	switch {
	case errors.Is(err, inventory.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, inventory.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, inventory.ErrStockLimit):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrPersistence):
		return fiber.NewError(fiber.StatusInternalServerError, "failed to persist inventory")
	}
	return err
}

func missingField(name string) error {
	return fiber.NewError(fiber.StatusUnprocessableEntity, name+" is required")
}
