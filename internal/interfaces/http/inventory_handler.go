package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
)

// InventoryHandler ajustes manuales de stock e historial de movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.AdjustStockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.AdjustStockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Adjust godoc
// @Summary      Ajustar stock
// @Description  increase suma, decrease resta (falla con 409 si supera el stock), set fija el valor.
// @Description  El producto se identifica por product_id o, si no viene, por barcode.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id o barcode, type, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateStruct(c, in); !ok {
		return err
	}
	out, err := h.uc.Adjust(c.UserContext(), inventory.AdjustInput{
		UserID:    GetUserID(c),
		ProductID: in.ProductID,
		Barcode:   in.Barcode,
		Type:      in.Type,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  int  false  "Filtrar por producto"
// @Param        limit       query  int  false  "Límite"  default(20)
// @Param        offset      query  int  false  "Offset"  default(0)
// @Success      200         {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	productID := int64(c.QueryInt("product_id", 0))
	if productID < 0 {
		productID = 0
	}
	out, err := h.uc.ListMovements(c.UserContext(), GetUserID(c), productID, limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}
