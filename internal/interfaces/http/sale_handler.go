package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
)

const (
	dateLayout   = "2006-01-02"
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF      = "application/pdf"
	exportPrefix = "ventas"
)

// SaleHandler registro y consulta de ventas (protegido).
type SaleHandler struct {
	processor *sales.Processor
	query     *sales.QueryUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(processor *sales.Processor, query *sales.QueryUseCase) *SaleHandler {
	return &SaleHandler{processor: processor, query: query}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock, congela precios y deja historial en una sola transacción.
// @Description  Si algún producto no existe o no alcanza el stock no se aplica nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "items y medio de pago"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateStruct(c, in); !ok {
		return err
	}
	items := make([]sales.Item, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, sales.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	sale, err := h.processor.Process(c.UserContext(), sales.Input{
		UserID:        GetUserID(c),
		Items:         items,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sales.ToSaleResponse(sale))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde (YYYY-MM-DD, inclusive)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.SaleListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeValidation, Message: err.Error()})
	}
	limit, offset := pageParams(c)
	out, err := h.query.List(c.UserContext(), GetUserID(c), from, to, limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	out, err := h.query.Get(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt.pdf [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	pdf, err := h.query.Receipt(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, mimePDF)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="venta-%d.pdf"`, id))
	return c.Send(pdf)
}

// Export godoc
// @Summary      Exportar ventas a Excel
// @Tags         sales
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from  query  string  false  "Desde (YYYY-MM-DD, inclusive)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales/export [get]
func (h *SaleHandler) Export(c *fiber.Ctx) error {
	from, to, err := dateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeValidation, Message: err.Error()})
	}
	var buf bytes.Buffer
	if err := h.query.Export(c.UserContext(), GetUserID(c), from, to, &buf); err != nil {
		return writeDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, mimeXLSX)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.xlsx"`, exportName(from, to)))
	return c.Send(buf.Bytes())
}

// dateRange convierte fechas YYYY-MM-DD (ambas inclusive) al rango [from, to).
// Una fecha vacía deja ese extremo abierto.
func dateRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = time.ParseInLocation(dateLayout, fromStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from inválido, formato YYYY-MM-DD")
		}
	}
	if toStr != "" {
		to, err = time.ParseInLocation(dateLayout, toStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to inválido, formato YYYY-MM-DD")
		}
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from debe ser anterior o igual a to")
	}
	return from, to, nil
}

func exportName(from, to time.Time) string {
	switch {
	case !from.IsZero() && !to.IsZero():
		return fmt.Sprintf("%s_%s_%s", exportPrefix, from.Format(dateLayout), to.AddDate(0, 0, -1).Format(dateLayout))
	case !from.IsZero():
		return fmt.Sprintf("%s_desde_%s", exportPrefix, from.Format(dateLayout))
	default:
		return exportPrefix
	}
}
