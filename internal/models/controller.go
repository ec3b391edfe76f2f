package models

// Controller identifies one monitored PLC.
type Controller struct {
	Name    string `json:"name"`    // e.g. "Casting_1A"
	Address string `json:"address"` // host of the controller on the plant network
}
