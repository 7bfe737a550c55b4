package codec

import (
	"fmt"
	"io"
	"time"

	"badgeclock/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles the YAML roster format
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlRoster represents the YAML structure of a roster file
type yamlRoster struct {
	Employees []yamlEmployee `yaml:"employees"`
}

type yamlEmployee struct {
	ID         string `yaml:"id,omitempty"`
	FullName   string `yaml:"full_name"`
	Department string `yaml:"department,omitempty"`
	Gender     string `yaml:"gender,omitempty"`
	CIN        string `yaml:"cin,omitempty"`
	CardUID    string `yaml:"card_uid"`
	DateAdded  string `yaml:"date_added,omitempty"`
}

// Parse reads a roster from YAML. Entries are normalized but not validated.
func (c *YAMLCodec) Parse(r io.Reader) ([]domain.Employee, error) {
	var yr yamlRoster
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yr); err != nil {
		if err == io.EOF {
			return []domain.Employee{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	employees := make([]domain.Employee, 0, len(yr.Employees))
	for i, ye := range yr.Employees {
		emp := domain.Employee{
			ID:         ye.ID,
			FullName:   ye.FullName,
			Department: ye.Department,
			Gender:     ye.Gender,
			CIN:        ye.CIN,
			CardUID:    ye.CardUID,
		}
		if ye.DateAdded != "" {
			added, err := parseDate(ye.DateAdded)
			if err != nil {
				return nil, fmt.Errorf("employee %d: bad date_added %q: %w", i+1, ye.DateAdded, err)
			}
			emp.DateAdded = added
		}
		emp.Normalize()
		employees = append(employees, emp)
	}

	return employees, nil
}

// Export writes employees as a YAML roster
func (c *YAMLCodec) Export(employees []domain.Employee, w io.Writer) error {
	yr := yamlRoster{
		Employees: make([]yamlEmployee, 0, len(employees)),
	}

	for _, emp := range employees {
		ye := yamlEmployee{
			ID:         emp.ID,
			FullName:   emp.FullName,
			Department: emp.Department,
			Gender:     emp.Gender,
			CIN:        emp.CIN,
			CardUID:    emp.CardUID,
		}
		if !emp.DateAdded.IsZero() {
			ye.DateAdded = domain.FormatTimestamp(emp.DateAdded)
		}
		yr.Employees = append(yr.Employees, ye)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yr); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// parseDate accepts a full timestamp or a bare calendar day
func parseDate(s string) (time.Time, error) {
	if t, err := domain.ParseTimestamp(s); err == nil {
		return t, nil
	}
	return time.Parse(domain.DayLayout, s)
}
