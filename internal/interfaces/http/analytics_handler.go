package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/inventario-pos/internal/application/analytics"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
)

// AnalyticsHandler maneja el reporte de ventas y ganancia.
type AnalyticsHandler struct {
	uc *appanalytics.ReportUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *appanalytics.ReportUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetSalesReport godoc
// @Summary      Reporte de ventas y ganancia (Pareto 80/20)
// @Description  Totales del período, ganancia (precio de venta menos costo congelados en cada venta)
// @Description  y ranking de productos por ingreso con los que explican el 80% del total.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date    query  string  false  "Fin del período (YYYY-MM-DD, inclusive). Default: hoy."
// @Param        top_n       query  int     false  "Máx. productos en el ranking (default 20, max 200)."
// @Success      200  {object}  dto.SalesReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *AnalyticsHandler) GetSalesReport(c *fiber.Ctx) error {
	var req dto.SalesReportRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}

	report, err := h.uc.GetSalesReport(c.UserContext(), GetUserID(c), req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(report)
}
