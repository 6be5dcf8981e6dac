package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// WorkspaceID is a value object identifying a workspace, the flat
// top-level container of cards and edges.
type WorkspaceID struct {
	value string
}

// NewWorkspaceID creates a new random WorkspaceID
func NewWorkspaceID() WorkspaceID {
	return WorkspaceID{value: uuid.New().String()}
}

// NewWorkspaceIDFromString creates a WorkspaceID from an existing string
func NewWorkspaceIDFromString(id string) (WorkspaceID, error) {
	if id == "" {
		return WorkspaceID{}, errors.New("workspace ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return WorkspaceID{}, errors.New("workspace ID must be a valid UUID")
	}
	return WorkspaceID{value: id}, nil
}

// String returns the string representation
func (id WorkspaceID) String() string {
	return id.value
}

// Equals checks if two WorkspaceIDs are equal
func (id WorkspaceID) Equals(other WorkspaceID) bool {
	return id.value == other.value
}

// IsZero checks if the WorkspaceID is the zero value
func (id WorkspaceID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id WorkspaceID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *WorkspaceID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("WorkspaceID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
