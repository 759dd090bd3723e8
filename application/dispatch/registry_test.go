package dispatch

import (
	"context"
	"testing"

	"planner-backend/application/modules"
	"planner-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopHandler struct{ name string }

func (h *noopHandler) Handle(ctx context.Context, draft modules.Draft) (*modules.HandleResult, error) {
	return &modules.HandleResult{}, nil
}

func TestNewRegistry_CoversTaxonomy(t *testing.T) {
	calendar := &noopHandler{name: "calendar"}
	generic := &noopHandler{name: "generic"}

	registry, err := NewRegistry(calendar, generic)
	require.NoError(t, err)

	for _, kind := range valueobjects.Taxonomy() {
		handler, _ := registry.Resolve(kind)
		assert.NotNil(t, handler, "kind %s", kind)
	}

	handler, _ := registry.Resolve(valueobjects.KindCalendar)
	assert.Same(t, calendar, handler)
	handler, _ = registry.Resolve(valueobjects.KindMemo)
	assert.Same(t, generic, handler)
}

func TestNewRegistry_RequiresBothHandlers(t *testing.T) {
	_, err := NewRegistry(nil, &noopHandler{})
	assert.Error(t, err)

	_, err = NewRegistry(&noopHandler{}, nil)
	assert.Error(t, err)
}

func TestRegistry_StubKinds(t *testing.T) {
	registry, err := NewRegistry(&noopHandler{}, &noopHandler{})
	require.NoError(t, err)

	for _, kind := range []valueobjects.ModuleKind{
		valueobjects.KindTask,
		valueobjects.KindRemember,
		valueobjects.KindJournal,
		valueobjects.KindFood,
		valueobjects.KindGym,
		valueobjects.KindWork,
	} {
		_, isStub := registry.Resolve(kind)
		assert.True(t, isStub, "kind %s", kind)
	}

	for _, kind := range []valueobjects.ModuleKind{
		valueobjects.KindMemo,
		valueobjects.KindCalendar,
		valueobjects.KindMood,
		valueobjects.KindExpense,
	} {
		_, isStub := registry.Resolve(kind)
		assert.False(t, isStub, "kind %s", kind)
	}
}

func TestRegistry_UnknownKindFallsBack(t *testing.T) {
	generic := &noopHandler{name: "generic"}
	registry, err := NewRegistry(&noopHandler{name: "calendar"}, generic)
	require.NoError(t, err)

	handler, isStub := registry.Resolve(valueobjects.ModuleKind("shopping_list"))

	assert.Same(t, generic, handler)
	assert.False(t, isStub)
}

func TestComposeConfirmation(t *testing.T) {
	plain := composeConfirmation("Saved it.", valueobjects.KindMemo, false)
	assert.Equal(t, "Saved it.", plain)

	stubbed := composeConfirmation("Saved it.", valueobjects.KindTask, true)
	assert.Contains(t, stubbed, "Saved it.")
	assert.Contains(t, stubbed, "task")
	assert.Contains(t, stubbed, "isn't available yet")
}
