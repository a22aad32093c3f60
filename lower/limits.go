package lower

// Limits bounds the interface numbers the target format can represent.
type Limits struct {
	MaxLocation             int32 `toml:"max_location"`
	MaxBinding              int32 `toml:"max_binding"`
	MaxSet                  int32 `toml:"max_set"`
	MaxInterstageComponents int32 `toml:"max_interstage_components"`
}

// DefaultLimits returns the limits of a baseline target.
func DefaultLimits() Limits {
	return Limits{
		MaxLocation:             4095,
		MaxBinding:              4095,
		MaxSet:                  31,
		MaxInterstageComponents: 128,
	}
}
