package updater

import "fmt"

// State is a step of a reconciliation run.
type State int

const (
	Start State = iota
	BrowserDetected
	DriverDetected
	VersionsCompared
	UpToDate
	NeedsUpdate
	Downloaded
	Verified
	Extracted
	Stopped
	Installed
	CleanedUp
	Done
	Aborted
)

var stateNames = [...]string{
	Start:            "start",
	BrowserDetected:  "browser-detected",
	DriverDetected:   "driver-detected",
	VersionsCompared: "versions-compared",
	UpToDate:         "up-to-date",
	NeedsUpdate:      "needs-update",
	Downloaded:       "downloaded",
	Verified:         "verified",
	Extracted:        "extracted",
	Stopped:          "stopped",
	Installed:        "installed",
	CleanedUp:        "cleaned-up",
	Done:             "done",
	Aborted:          "aborted",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}
