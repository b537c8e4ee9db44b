package models

// Persona describes the decoy identity presented to the counterparty
type Persona struct {
	Name       string `json:"name" mapstructure:"name"`
	Age        int    `json:"age" mapstructure:"age"`
	Location   string `json:"location" mapstructure:"location"`
	Occupation string `json:"occupation" mapstructure:"occupation"`
	Tone       string `json:"tone" mapstructure:"tone"`
}

// DefaultPersona returns the stock decoy identity
func DefaultPersona() Persona {
	return Persona{
		Name:       "Riya Mehta",
		Age:        29,
		Location:   "Pune",
		Occupation: "Accounts Executive",
		Tone:       "polite, slightly cautious, cooperative",
	}
}
