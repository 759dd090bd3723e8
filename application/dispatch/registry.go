package dispatch

import (
	"fmt"

	"planner-backend/application/modules"
	"planner-backend/domain/core/valueobjects"
)

// stubKinds are taxonomy members whose dedicated modules are planned but
// not yet built. They route to the generic handler, and the dispatcher
// marks their confirmations so the user can tell the capture was handled
// generically rather than by the full module.
var stubKinds = map[valueobjects.ModuleKind]bool{
	valueobjects.KindTask:     true,
	valueobjects.KindRemember: true,
	valueobjects.KindJournal:  true,
	valueobjects.KindFood:     true,
	valueobjects.KindGym:      true,
	valueobjects.KindWork:     true,
}

// Registry maps every taxonomy member to exactly one handler. It is
// populated once at process start; there is no runtime registration.
type Registry struct {
	handlers map[valueobjects.ModuleKind]modules.ModuleHandler
}

// NewRegistry builds the static registry. It fails if any taxonomy member
// would be left without a handler, so an incomplete mapping can never
// reach serving.
func NewRegistry(calendar, generic modules.ModuleHandler) (*Registry, error) {
	if calendar == nil || generic == nil {
		return nil, fmt.Errorf("registry requires both calendar and generic handlers")
	}

	handlers := make(map[valueobjects.ModuleKind]modules.ModuleHandler)
	for _, kind := range valueobjects.Taxonomy() {
		switch kind {
		case valueobjects.KindCalendar:
			handlers[kind] = calendar
		default:
			handlers[kind] = generic
		}
	}

	for _, kind := range valueobjects.Taxonomy() {
		if handlers[kind] == nil {
			return nil, fmt.Errorf("no handler mapped for module kind %s", kind)
		}
	}

	return &Registry{handlers: handlers}, nil
}

// Resolve returns the handler for a kind plus whether the kind is a
// planned-but-unimplemented stub. The kind is a taxonomy member by
// construction (the classifier already collapsed unknowns), but an
// out-of-band caller still gets the fallback handler rather than a nil.
func (r *Registry) Resolve(kind valueobjects.ModuleKind) (modules.ModuleHandler, bool) {
	if handler, ok := r.handlers[kind]; ok {
		return handler, stubKinds[kind]
	}
	return r.handlers[valueobjects.FallbackKind], false
}
