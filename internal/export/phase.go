package export

// Phase is a state of the export state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnected
	PhaseLoginsExported
	PhaseNotesExported
	PhaseBookmarksExported
	PhaseSaved
	PhaseClosed
)

var phaseNames = map[Phase]string{
	PhaseIdle:              "idle",
	PhaseConnected:         "connected",
	PhaseLoginsExported:    "logins-exported",
	PhaseNotesExported:     "notes-exported",
	PhaseBookmarksExported: "bookmarks-exported",
	PhaseSaved:             "saved",
	PhaseClosed:            "closed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Step names the operation that moves the export out of a phase. Errors
// carry the step that failed.
type Step string

const (
	StepOpen      Step = "open"
	StepLogins    Step = "logins"
	StepNotes     Step = "notes"
	StepBookmarks Step = "bookmarks"
	StepSave      Step = "save"
)
