package dto

// InsightRequest body de POST /api/insights/analyze.
// Si ContextData viene vacío se arma con las métricas del dashboard del usuario.
type InsightRequest struct {
	AnalysisType string         `json:"analysis_type" validate:"omitempty,max=30"`
	ContextData  map[string]any `json:"context_data"`
}

// InsightResponse texto generado y modelo que respondió.
type InsightResponse struct {
	Insight   string `json:"insight"`
	ModelUsed string `json:"model_used,omitempty"`
}
