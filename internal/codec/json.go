package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"badgeclock/internal/domain"
)

// JSONCodec handles the JSON roster format, the same shape the HTTP API serves
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

type jsonRoster struct {
	Employees []domain.Employee `json:"employees"`
}

// Parse reads a roster from JSON
func (c *JSONCodec) Parse(r io.Reader) ([]domain.Employee, error) {
	var roster jsonRoster
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&roster); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	employees := make([]domain.Employee, 0, len(roster.Employees))
	for _, emp := range roster.Employees {
		emp.Normalize()
		employees = append(employees, emp)
	}
	return employees, nil
}

// Export writes employees as a JSON roster
func (c *JSONCodec) Export(employees []domain.Employee, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if employees == nil {
		employees = []domain.Employee{}
	}
	if err := encoder.Encode(jsonRoster{Employees: employees}); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
