// Package console implements the standalone todo manager backed by a
// JSON file in the user's home directory.
package console

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Title and description limits for console todos
const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 2000
)

// Todo statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Common errors
var (
	ErrTodoNotFound    = errors.New("todo not found")
	ErrEmptyTitle      = errors.New("title is required")
	ErrTitleTooLong    = fmt.Errorf("title exceeds %d characters", MaxTitleLength)
	ErrDescriptionLong = fmt.Errorf("description exceeds %d characters", MaxDescriptionLength)
	ErrNothingToUpdate = errors.New("nothing to update")
)

// Todo is a single console task
type Todo struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Manager owns the in-memory todo set and persists every mutation
type Manager struct {
	store  *Store
	todos  map[int]*Todo
	nextID int
}

// NewManager loads existing todos from the store. A missing or corrupt
// file starts a fresh collection.
func NewManager(store *Store) (*Manager, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		store:  store,
		todos:  make(map[int]*Todo),
		nextID: state.NextID,
	}
	for id, todo := range state.Todos {
		copied := todo
		m.todos[id] = &copied
	}
	if m.nextID < 1 {
		m.nextID = 1
	}
	return m, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// Add creates a todo and persists the collection
func (m *Manager) Add(title, description string) (*Todo, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if len(description) > MaxDescriptionLength {
		return nil, ErrDescriptionLong
	}

	todo := &Todo{
		ID:          m.nextID,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	m.todos[todo.ID] = todo
	m.nextID++

	if err := m.save(); err != nil {
		delete(m.todos, todo.ID)
		m.nextID--
		return nil, err
	}
	return todo, nil
}

// Get returns the todo with the given id
func (m *Manager) Get(id int) (*Todo, error) {
	todo, ok := m.todos[id]
	if !ok {
		return nil, ErrTodoNotFound
	}
	copied := *todo
	return &copied, nil
}

// List returns all todos ordered by id. status filters by "pending" or
// "completed"; empty means all.
func (m *Manager) List(status string) []Todo {
	var out []Todo
	for _, todo := range m.todos {
		if status != "" && todo.Status != status {
			continue
		}
		out = append(out, *todo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateInput carries the fields to change; nil fields are untouched
type UpdateInput struct {
	Title       *string
	Description *string
}

// Update applies a partial update and persists it
func (m *Manager) Update(id int, input UpdateInput) (*Todo, error) {
	todo, ok := m.todos[id]
	if !ok {
		return nil, ErrTodoNotFound
	}
	if input.Title == nil && input.Description == nil {
		return nil, ErrNothingToUpdate
	}

	prev := *todo
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		todo.Title = title
	}
	if input.Description != nil {
		if len(*input.Description) > MaxDescriptionLength {
			return nil, ErrDescriptionLong
		}
		todo.Description = *input.Description
	}

	if err := m.save(); err != nil {
		*todo = prev
		return nil, err
	}
	copied := *todo
	return &copied, nil
}

// Complete marks a todo done and persists it
func (m *Manager) Complete(id int) (*Todo, error) {
	todo, ok := m.todos[id]
	if !ok {
		return nil, ErrTodoNotFound
	}

	prev := todo.Status
	todo.Status = StatusCompleted
	if err := m.save(); err != nil {
		todo.Status = prev
		return nil, err
	}
	copied := *todo
	return &copied, nil
}

// Delete removes a todo and persists the collection
func (m *Manager) Delete(id int) error {
	todo, ok := m.todos[id]
	if !ok {
		return ErrTodoNotFound
	}

	delete(m.todos, id)
	if err := m.save(); err != nil {
		m.todos[id] = todo
		return err
	}
	return nil
}

func (m *Manager) save() error {
	state := State{
		NextID: m.nextID,
		Todos:  make(map[int]Todo, len(m.todos)),
	}
	for id, todo := range m.todos {
		state.Todos[id] = *todo
	}
	return m.store.Save(state)
}
