package models

// ComputeRequest asks for statistics of several indices over one image.
// Formulas wins over Collection; with neither set every formula is computed.
type ComputeRequest struct {
	URL                 string   `json:"url" binding:"required"`
	Formulas            []string `json:"formulas,omitempty"`
	Collection          string   `json:"collection,omitempty"`
	VegetationThreshold *float64 `json:"vegetation_threshold,omitempty" binding:"omitempty,gte=0,lte=1"`
	CLAHE               bool     `json:"clahe,omitempty"`
}

// RenderRequest asks for one index rendered as a PNG.
type RenderRequest struct {
	URL      string `json:"url" binding:"required"`
	Colormap string `json:"colormap,omitempty"`
	CLAHE    bool   `json:"clahe,omitempty"`
}

// FormulaListResponse lists the registry and its collection views
type FormulaListResponse struct {
	Formulas   []FormulaInfo `json:"formulas"`
	Linear     []string      `json:"linear"`
	Normalized []string      `json:"normalized"`
	Colormaps  []string      `json:"colormaps"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
