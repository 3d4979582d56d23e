package models

// RunningApp is one entry from the running-application enumeration.
type RunningApp struct {
	Name       string `json:"name"`
	BundleID   string `json:"bundle_id,omitempty"`
	PID        int32  `json:"pid"`
	Foreground bool   `json:"foreground"`
	Hidden     bool   `json:"hidden"`
}
