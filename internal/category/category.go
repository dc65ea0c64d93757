package category

// Table maps arXiv category codes to human-readable names and to the
// select-option labels used by the papers database. It is built once at
// startup and never mutated, so it is safe to share across components.
type Table struct {
	display map[string]string
	selects map[string]string
}

// DefaultSelect is the select label used for category codes without a
// dedicated option in the papers database.
const DefaultSelect = "Machine Learning"

// DefaultCategories are the arXiv categories monitored when the config
// does not override them.
var DefaultCategories = []string{"cs.AI", "cs.LG", "cs.CL", "cs.CV", "cs.RO"}

// Default returns the standard category table for the monitored
// computer-science categories.
func Default() *Table {
	return &Table{
		display: map[string]string{
			"cs.AI": "Artificial Intelligence",
			"cs.LG": "Machine Learning",
			"cs.CL": "Computation and Language",
			"cs.CV": "Computer Vision",
			"cs.RO": "Robotics",
		},
		selects: map[string]string{
			"cs.AI": "Artificial Intelligence",
			"cs.LG": "Machine Learning",
			"cs.CL": "NLP",
			"cs.CV": "Computer Vision",
			"cs.RO": "Robotics",
		},
	}
}

// Display returns the human-readable name for a category code, or the
// code itself when unknown.
func (t *Table) Display(code string) string {
	if name, ok := t.display[code]; ok {
		return name
	}
	return code
}

// Select returns the database select label for a category code, falling
// back to DefaultSelect for unmapped codes.
func (t *Table) Select(code string) string {
	if label, ok := t.selects[code]; ok {
		return label
	}
	return DefaultSelect
}
