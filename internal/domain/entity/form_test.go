package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestForm_EditWindow_Default(t *testing.T) {
	// Arrange: окно не задано
	form := &Form{UpdateWindowHours: 0}

	// Act & Assert: используется значение по умолчанию (24 часа)
	assert.Equal(t, 24*time.Hour, form.EditWindow())
}

func TestForm_EditWindow_Custom(t *testing.T) {
	form := &Form{UpdateWindowHours: 48}
	assert.Equal(t, 48*time.Hour, form.EditWindow())
}

func TestForm_IsPublished(t *testing.T) {
	form := &Form{}
	assert.False(t, form.IsPublished(), "форма без активной версии не опубликована")

	versionID := uint(5)
	form.ActiveVersionID = &versionID
	assert.True(t, form.IsPublished())
}

func TestFormRole_Allows(t *testing.T) {
	role := &FormRole{Role: RoleEditor}

	assert.True(t, role.Allows(RoleOwner, RoleEditor), "editor входит в набор {owner, editor}")
	assert.True(t, role.CanEdit())
	assert.False(t, role.Allows(RoleOwner), "editor не владелец")

	viewer := &FormRole{Role: RoleViewer}
	assert.False(t, viewer.CanEdit(), "viewer не имеет права на мутации")
	assert.True(t, viewer.Allows(RoleOwner, RoleEditor, RoleViewer))
}

func TestFormResponse_EditableUntil(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	form := &Form{UpdateWindowHours: 24}
	response := &FormResponse{CreatedAt: created}

	assert.Equal(t, created.Add(24*time.Hour), response.EditableUntil(form))
}
