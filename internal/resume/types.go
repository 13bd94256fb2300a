package resume

// DefaultMargin is applied to every page edge that the document leaves unset, in inches.
const DefaultMargin = 0.75

// MaxMargin bounds each page margin, in inches.
const MaxMargin = 3.0

// Document is the structured form of one résumé XML document.
// It is rebuilt from XML on every read and save and never mutated in place.
type Document struct {
	Personal   Personal
	Education  []EducationEntry
	Skills     []SkillGroup
	Experience []ExperienceEntry
	Margins    Margins
}

// Personal holds the contact block. Empty fields are omitted from the render.
type Personal struct {
	Name     string
	Email    string
	Phone    string
	Location string
}

// EducationEntry describes one institution.
type EducationEntry struct {
	Institution    string
	Degree         string
	GPA            string
	GraduationDate string
	Location       string
}

// SkillGroup is a labelled list of skills.
type SkillGroup struct {
	Category string
	Items    []string
}

// Empty reports whether the group carries neither a category nor any item.
func (g SkillGroup) Empty() bool {
	return g.Category == "" && len(g.Items) == 0
}

// ExperienceEntry describes one job.
type ExperienceEntry struct {
	Company          string
	Location         string
	Duration         string
	Position         string
	Responsibilities []string
}

// Margins are page margins in inches.
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// DefaultMargins returns 0.75in on every edge.
func DefaultMargins() Margins {
	return Margins{Top: DefaultMargin, Bottom: DefaultMargin, Left: DefaultMargin, Right: DefaultMargin}
}
