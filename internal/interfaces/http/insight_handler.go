package http

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/inventario-pos/internal/application/analytics"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/insight"
)

// InsightHandler recomendaciones de negocio generadas por IA.
type InsightHandler struct {
	advisor   *insight.Advisor
	dashboard *appanalytics.DashboardUseCase
}

// NewInsightHandler construye el handler. dashboard se usa para completar context_data cuando viene vacío.
func NewInsightHandler(advisor *insight.Advisor, dashboard *appanalytics.DashboardUseCase) *InsightHandler {
	return &InsightHandler{advisor: advisor, dashboard: dashboard}
}

// Analyze godoc
// @Summary      Análisis de negocio con IA
// @Description  analysis_type: general, growth, costs, cash (otro valor usa una plantilla genérica).
// @Description  Sin context_data, los tipos general y growth se completan con las métricas del dashboard.
// @Description  Responde 503 si la IA no está configurada o todos los modelos fallaron y 502 si el proveedor rechaza la cuenta.
// @Tags         insights
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InsightRequest  true  "Tipo de análisis y datos"
// @Success      200   {object}  dto.InsightResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/insights/analyze [post]
func (h *InsightHandler) Analyze(c *fiber.Ctx) error {
	var in dto.InsightRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateStruct(c, in); !ok {
		return err
	}
	in.AnalysisType = strings.ToLower(strings.TrimSpace(in.AnalysisType))
	if in.AnalysisType == "" {
		in.AnalysisType = insight.AnalysisGeneral
	}

	ctx := c.UserContext()
	data := in.ContextData
	if len(data) == 0 && h.dashboard != nil {
		var err error
		data, err = h.defaultContext(ctx, GetUserID(c), in.AnalysisType)
		if err != nil {
			return writeDomainError(c, err)
		}
	}

	res, err := h.advisor.Analyze(ctx, in.AnalysisType, data)
	if err != nil {
		return writeInsightError(c, err)
	}
	return c.JSON(dto.InsightResponse{Insight: res.Insight, ModelUsed: res.ModelUsed})
}

// defaultContext arma los datos del prompt con las métricas del usuario.
func (h *InsightHandler) defaultContext(ctx context.Context, userID int64, analysisType string) (map[string]any, error) {
	switch analysisType {
	case insight.AnalysisGeneral:
		summary, err := h.dashboard.GetSalesSummary(ctx, userID)
		if err != nil {
			return nil, err
		}
		stats, err := h.dashboard.GetStats(ctx, userID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"sales_today":   summary.SalesToday,
			"daily_average": summary.DailyAverage,
			"low_stock":     stats.LowStock,
		}, nil
	case insight.AnalysisGrowth:
		summary, err := h.dashboard.GetSalesSummary(ctx, userID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"month_income": summary.MonthIncome,
			"month_profit": summary.MonthProfit,
			"trend_desc":   fmt.Sprintf("%d ventas en %s, promedio diario $%s", summary.MonthSales, summary.DateLabel, summary.DailyAverage.StringFixed(0)),
		}, nil
	default:
		return map[string]any{}, nil
	}
}
