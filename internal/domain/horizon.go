package domain

// ReturnHorizon selects one of the trailing return fields of an ETF.
type ReturnHorizon string

const (
	Horizon1D ReturnHorizon = "1d"
	Horizon1W ReturnHorizon = "1w"
	Horizon1M ReturnHorizon = "1m"
	Horizon1Y ReturnHorizon = "1y"
)

// ParseReturnHorizon validates a horizon name.
func ParseReturnHorizon(s string) (ReturnHorizon, error) {
	switch h := ReturnHorizon(s); h {
	case Horizon1D, Horizon1W, Horizon1M, Horizon1Y:
		return h, nil
	}
	return "", &InvalidInputError{Field: "horizon", Reason: "want one of 1d, 1w, 1m, 1y, got " + quote(s)}
}

// Dimension is a categorical axis used to break down portfolio value.
type Dimension string

const (
	DimensionSector Dimension = "sector"
	DimensionRegion Dimension = "region"
)

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimensionSector, DimensionRegion:
		return d, nil
	}
	return "", &InvalidInputError{Field: "dimension", Reason: "want sector or region, got " + quote(s)}
}

func quote(s string) string { return `"` + s + `"` }
