package types

// Configuration is the mutable heart of user state: one selected option id
// (as a string) per field, width/height, selected accessory ids and quantity.
// Invariant: after an availability/auto-correction pass every non-empty field
// value references an id present in that field's available set; an empty
// available set clears the field to "".
type Configuration struct {
	ProductLineID    string   `json:"productLineId"`
	MirrorControlID  string   `json:"mirrorControlId"`
	MirrorStyleID    string   `json:"mirrorStyleId"`
	LightDirectionID string   `json:"lightDirectionId"`
	FrameColorID     string   `json:"frameColorId"`
	FrameThicknessID string   `json:"frameThicknessId"`
	MountingID       string   `json:"mountingId"`
	LightOutputID    string   `json:"lightOutputId"`
	ColorTempID      string   `json:"colorTemperatureId"`
	DriverID         string   `json:"driverId"`
	SizeID           string   `json:"sizeId"`
	Width            string   `json:"width"`
	Height           string   `json:"height"`
	UseCustomSize    bool     `json:"useCustomSize"`
	Accessories      []string `json:"accessories"`
	Quantity         int      `json:"quantity"`
}

// Get returns the selected option id for a single-select field.
func (c *Configuration) Get(field string) string {
	switch field {
	case FieldMirrorControl:
		return c.MirrorControlID
	case FieldMirrorStyle:
		return c.MirrorStyleID
	case FieldLightDirection:
		return c.LightDirectionID
	case FieldFrameColor:
		return c.FrameColorID
	case FieldFrameThickness:
		return c.FrameThicknessID
	case FieldMounting:
		return c.MountingID
	case FieldLightOutput:
		return c.LightOutputID
	case FieldColorTemperature:
		return c.ColorTempID
	case FieldDriver:
		return c.DriverID
	case FieldSize:
		return c.SizeID
	}
	return ""
}

// Set assigns the selected option id for a single-select field. Unknown
// fields are ignored; the field vocabulary is closed.
func (c *Configuration) Set(field, value string) {
	switch field {
	case FieldMirrorControl:
		c.MirrorControlID = value
	case FieldMirrorStyle:
		c.MirrorStyleID = value
	case FieldLightDirection:
		c.LightDirectionID = value
	case FieldFrameColor:
		c.FrameColorID = value
	case FieldFrameThickness:
		c.FrameThicknessID = value
	case FieldMounting:
		c.MountingID = value
	case FieldLightOutput:
		c.LightOutputID = value
	case FieldColorTemperature:
		c.ColorTempID = value
	case FieldDriver:
		c.DriverID = value
	case FieldSize:
		c.SizeID = value
	}
}

// Clone returns a deep copy. The orchestrator hands copies to the pure
// pipeline stages so no stage ever mutates shared state.
func (c *Configuration) Clone() Configuration {
	out := *c
	out.Accessories = append([]string(nil), c.Accessories...)
	return out
}

// HasAccessory reports whether the accessory id is selected.
func (c *Configuration) HasAccessory(id string) bool {
	for _, a := range c.Accessories {
		if a == id {
			return true
		}
	}
	return false
}
