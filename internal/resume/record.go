package resume

// Record is the JSON shape returned to the editor when a stored résumé is reopened.
type Record struct {
	SaveName   string             `json:"save_name"`
	Personal   PersonalRecord     `json:"personal"`
	Education  []EducationRecord  `json:"education"`
	Skills     []SkillRecord      `json:"skills"`
	Experience []ExperienceRecord `json:"experience"`
	Margins    Margins            `json:"margins"`
}

type PersonalRecord struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type EducationRecord struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	GPA         string `json:"gpa"`
	Date        string `json:"date"`
	Location    string `json:"location"`
}

type SkillRecord struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

type ExperienceRecord struct {
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	Duration         string   `json:"duration"`
	Position         string   `json:"position"`
	Responsibilities []string `json:"responsibilities"`
}

// ToRecord converts a Document into its editor view. Lists are never nil.
func ToRecord(saveName string, doc Document) Record {
	rec := Record{
		SaveName: saveName,
		Personal: PersonalRecord{
			Name:     doc.Personal.Name,
			Email:    doc.Personal.Email,
			Phone:    doc.Personal.Phone,
			Location: doc.Personal.Location,
		},
		Education:  make([]EducationRecord, 0, len(doc.Education)),
		Skills:     make([]SkillRecord, 0, len(doc.Skills)),
		Experience: make([]ExperienceRecord, 0, len(doc.Experience)),
		Margins:    doc.Margins,
	}
	for _, e := range doc.Education {
		rec.Education = append(rec.Education, EducationRecord{
			Institution: e.Institution,
			Degree:      e.Degree,
			GPA:         e.GPA,
			Date:        e.GraduationDate,
			Location:    e.Location,
		})
	}
	for _, g := range doc.Skills {
		items := append([]string{}, g.Items...)
		rec.Skills = append(rec.Skills, SkillRecord{Category: g.Category, Items: items})
	}
	for _, j := range doc.Experience {
		res := append([]string{}, j.Responsibilities...)
		rec.Experience = append(rec.Experience, ExperienceRecord{
			Company:          j.Company,
			Location:         j.Location,
			Duration:         j.Duration,
			Position:         j.Position,
			Responsibilities: res,
		})
	}
	return rec
}
