package console

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.json")
	m, err := NewManager(NewStore(path))
	require.NoError(t, err)
	return m, path
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	m, _ := newTestManager(t)

	first, err := m.Add("buy milk", "")
	require.NoError(t, err)
	second, err := m.Add("walk the dog", "before sunset")
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, StatusPending, first.Status)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestAddValidation(t *testing.T) {
	m, _ := newTestManager(t)

	cases := []struct {
		name        string
		title       string
		description string
		wantErr     error
	}{
		{"empty title", "", "", ErrEmptyTitle},
		{"whitespace title", "   ", "", ErrEmptyTitle},
		{"title too long", strings.Repeat("a", MaxTitleLength+1), "", ErrTitleTooLong},
		{"description too long", "ok", strings.Repeat("b", MaxDescriptionLength+1), ErrDescriptionLong},
		{"at the limits", strings.Repeat("a", MaxTitleLength), strings.Repeat("b", MaxDescriptionLength), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Add(tc.title, tc.description)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompleteAndListFiltering(t *testing.T) {
	m, _ := newTestManager(t)

	first, err := m.Add("one", "")
	require.NoError(t, err)
	_, err = m.Add("two", "")
	require.NoError(t, err)

	done, err := m.Complete(first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	assert.Len(t, m.List(""), 2)
	assert.Len(t, m.List(StatusPending), 1)
	assert.Len(t, m.List(StatusCompleted), 1)
	assert.Equal(t, "one", m.List(StatusCompleted)[0].Title)
}

func TestUpdatePartial(t *testing.T) {
	m, _ := newTestManager(t)

	todo, err := m.Add("original", "keep me")
	require.NoError(t, err)

	title := "renamed"
	updated, err := m.Update(todo.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "keep me", updated.Description)

	_, err = m.Update(todo.ID, UpdateInput{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	_, err = m.Update(999, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestDelete(t *testing.T) {
	m, _ := newTestManager(t)

	todo, err := m.Add("ephemeral", "")
	require.NoError(t, err)

	require.NoError(t, m.Delete(todo.ID))
	_, err = m.Get(todo.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)
	assert.ErrorIs(t, m.Delete(todo.ID), ErrTodoNotFound)
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")

	m, err := NewManager(NewStore(path))
	require.NoError(t, err)
	created, err := m.Add("persist me", "across restarts")
	require.NoError(t, err)
	_, err = m.Complete(created.ID)
	require.NoError(t, err)

	// a new manager on the same file sees the saved state
	reloaded, err := NewManager(NewStore(path))
	require.NoError(t, err)

	got, err := reloaded.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist me", got.Title)
	assert.Equal(t, StatusCompleted, got.Status)

	// ids keep counting from where they left off
	next, err := reloaded.Add("another", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID+1, next.ID)
}

func TestCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m, err := NewManager(NewStore(path))
	require.NoError(t, err)
	assert.Empty(t, m.List(""))

	created, err := m.Add("fresh start", "")
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

func TestMissingFileStartsEmpty(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Empty(t, m.List(""))
}
