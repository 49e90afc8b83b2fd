package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/inventario-pos/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetStats resumen del catálogo del usuario.
// GET /api/dashboard/stats
//
// Respuesta: DashboardStatsDTO (total_products, low_stock, inventory_value, recent_movements[10]).
//
// @Summary      Resumen de inventario
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardStatsDTO
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.uc.GetStats(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(stats)
}

// GetSalesSummary resumen de ventas del día y del mes en curso.
// GET /api/dashboard/sales-summary
//
// No requiere parámetros; las fechas se calculan en el servidor.
//
// @Summary      Resumen de ventas
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SalesSummaryDTO
// @Router       /api/dashboard/sales-summary [get]
func (h *DashboardHandler) GetSalesSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSalesSummary(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(summary)
}
