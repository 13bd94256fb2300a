package resume

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

type outDocument struct {
	XMLName    xml.Name      `xml:"resume"`
	Personal   outPersonal   `xml:"personal_info"`
	Education  outEducation  `xml:"education"`
	Skills     outSkills     `xml:"skills"`
	Experience outExperience `xml:"experience"`
	Margins    outMargins    `xml:"margins"`
}

type outPersonal struct {
	Name     string `xml:"name"`
	Email    string `xml:"email"`
	Phone    string `xml:"phone"`
	Location string `xml:"location"`
}

type outEducation struct {
	Institutions []outInstitution `xml:"institution"`
}

type outInstitution struct {
	Name           string `xml:"name"`
	Degree         string `xml:"degree"`
	GPA            string `xml:"gpa"`
	GraduationDate string `xml:"graduation_date"`
	Location       string `xml:"location"`
}

type outSkills struct {
	Groups []outSkillGroup `xml:"skillgroup"`
}

type outSkillGroup struct {
	Category string   `xml:"category"`
	Items    []string `xml:"items>item"`
}

type outExperience struct {
	Jobs []outJob `xml:"job"`
}

type outJob struct {
	Company          string   `xml:"company"`
	Location         string   `xml:"location"`
	Duration         string   `xml:"duration"`
	Position         string   `xml:"position"`
	Responsibilities []string `xml:"responsibilities>responsibility"`
}

type outMargins struct {
	Top    string `xml:"top"`
	Bottom string `xml:"bottom"`
	Left   string `xml:"left"`
	Right  string `xml:"right"`
}

// Encode serializes a Document into the canonical XML form accepted by Parse.
func Encode(doc Document) ([]byte, error) {
	out := outDocument{
		Personal: outPersonal{
			Name:     doc.Personal.Name,
			Email:    doc.Personal.Email,
			Phone:    doc.Personal.Phone,
			Location: doc.Personal.Location,
		},
		Margins: outMargins{
			Top:    formatMargin(doc.Margins.Top),
			Bottom: formatMargin(doc.Margins.Bottom),
			Left:   formatMargin(doc.Margins.Left),
			Right:  formatMargin(doc.Margins.Right),
		},
	}
	for _, e := range doc.Education {
		out.Education.Institutions = append(out.Education.Institutions, outInstitution{
			Name:           e.Institution,
			Degree:         e.Degree,
			GPA:            e.GPA,
			GraduationDate: e.GraduationDate,
			Location:       e.Location,
		})
	}
	for _, g := range doc.Skills {
		if g.Empty() {
			continue
		}
		out.Skills.Groups = append(out.Skills.Groups, outSkillGroup{Category: g.Category, Items: g.Items})
	}
	for _, j := range doc.Experience {
		out.Experience.Jobs = append(out.Experience.Jobs, outJob{
			Company:          j.Company,
			Location:         j.Location,
			Duration:         j.Duration,
			Position:         j.Position,
			Responsibilities: j.Responsibilities,
		})
	}

	body, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode resume xml: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func formatMargin(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
