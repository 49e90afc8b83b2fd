package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Tipos de análisis con plantilla propia. Cualquier otro usa la plantilla genérica.
const (
	AnalysisGeneral = "general"
	AnalysisGrowth  = "growth"
	AnalysisCosts   = "costs"
	AnalysisCash    = "cash"
)

// BuildPrompt arma el prompt para el tipo de análisis con los datos recibidos.
// Los valores ausentes se muestran como 0 o "sin datos".
func BuildPrompt(analysisType string, data map[string]any) string {
	switch normalizeType(analysisType) {
	case AnalysisGeneral:
		return fmt.Sprintf(`Actúa como consultor de negocios senior. Datos del día:
- Ventas de hoy: $%s
- Promedio diario esperado: $%s
- Productos con stock crítico: %s

Tarea:
1. Compara hoy contra el promedio e indica si el día va bien o mal.
2. Si hay stock crítico (mayor a 0) es la prioridad número uno: advierte la pérdida de ventas.
3. Da un único consejo accionable para mejorar el cierre del día.

Formato: respuesta corta (máximo 50 palabras), tono directo y motivador, sin saludos.`,
			number(data, "sales_today"), number(data, "daily_average"), number(data, "low_stock"))

	case AnalysisGrowth:
		income := decimalOf(data, "month_income")
		profit := decimalOf(data, "month_profit")
		margin := decimal.Zero
		if income.IsPositive() {
			margin = profit.Div(income).Mul(decimal.NewFromInt(100))
		}
		return fmt.Sprintf(`Actúa como director financiero. Datos del mes en curso:
- Ingresos: $%s
- Margen neto real: %s%%
- Contexto: %s

Proyecta y responde estrictamente con este formato Markdown:

### Proyección
* **Cierre estimado:** proyección lineal simple a fin de mes.
* **Brecha:** diferencia en $ entre lo actual y la proyección.

### Estrategia de crecimiento
* **Táctica:** una acción concreta (combos, venta adicional en caja).
* **Impacto:** nuevo margen aproximado si el ticket promedio sube un 10%%.

### Diagnóstico de rentabilidad
Una frase sobre si un margen de %s%% es sano o peligroso para un comercio minorista.

### Recomendación
Un consejo breve y esperanzador para el dueño del negocio.`,
			income.StringFixed(2), margin.StringFixed(1), text(data, "trend_desc"), margin.StringFixed(1))

	case AnalysisCosts:
		return fmt.Sprintf(`Eres un asesor financiero exigente pero justo.
- Costos fijos: $%s
- Ventas actuales: $%s
- Margen bruto estimado: 30%%

Calcula el punto de equilibrio (ventas necesarias = costos fijos / 0.30).

Responde solo con este formato:
**Punto de equilibrio:** $monto
**Estado actual:** pérdida, ganancia o equilibrio
**Consejo:** una frase de diez palabras (recortar gastos o vender más)`,
			number(data, "user_fixed_costs"), number(data, "month_income"))

	case AnalysisCash:
		return fmt.Sprintf(`Eres un auditor forense. Revisa estos cierres de caja: %s.

Busca patrones anómalos (días en $0, saltos sin explicación).
Si todo es normal responde: "Flujos consistentes. Sin anomalías detectadas."
Si algo es raro responde: "ALERTA: revisar el cierre del día [fecha]. Monto sospechoso."`,
			text(data, "recent_closures"))
	}
	return "Analiza los datos y da un consejo útil.\n\nDatos:\n" + dump(data)
}

func normalizeType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func decimalOf(data map[string]any, key string) decimal.Decimal {
	switch v := data[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func number(data map[string]any, key string) string {
	if _, ok := data[key]; !ok {
		return "0"
	}
	return decimalOf(data, key).String()
}

func text(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return "sin datos"
	}
	return fmt.Sprint(v)
}

// dump lista los datos en orden de clave para que el prompt sea determinista.
func dump(data map[string]any) string {
	if len(data) == 0 {
		return "(sin datos)"
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, data[k])
	}
	return b.String()
}
