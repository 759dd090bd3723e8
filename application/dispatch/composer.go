package dispatch

import (
	"fmt"

	"planner-backend/domain/core/valueobjects"
)

const persistenceApology = "I heard you, but I couldn't save your note just now. Please try again in a moment."

// composeConfirmation decorates a handler's confirmation for the response
// the caller speaks back. Stub kinds get an honest note that the capture
// was stored as a plain note until the dedicated module ships.
func composeConfirmation(base string, kind valueobjects.ModuleKind, isStub bool) string {
	if !isStub {
		return base
	}
	return fmt.Sprintf("%s Full %s support isn't available yet, so I've kept it as a note for now.", base, kind)
}
