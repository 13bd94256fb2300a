package resume

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// leaf collects every occurrence of a child element; the first one wins.
type leaf []string

func (l leaf) text() string {
	if len(l) == 0 {
		return ""
	}
	return strings.TrimSpace(l[0])
}

type xmlDocument struct {
	Personal   []xmlPersonal   `xml:"personal_info"`
	Education  []xmlEducation  `xml:"education"`
	Skills     []xmlSkills     `xml:"skills"`
	Experience []xmlExperience `xml:"experience"`
	Margins    []xmlMargins    `xml:"margins"`
}

type xmlPersonal struct {
	Name     leaf `xml:"name"`
	Email    leaf `xml:"email"`
	Phone    leaf `xml:"phone"`
	Location leaf `xml:"location"`
}

type xmlEducation struct {
	Institutions []xmlInstitution `xml:"institution"`
}

type xmlInstitution struct {
	Name           leaf `xml:"name"`
	Degree         leaf `xml:"degree"`
	GPA            leaf `xml:"gpa"`
	GraduationDate leaf `xml:"graduation_date"`
	Location       leaf `xml:"location"`
}

type xmlSkills struct {
	Groups []xmlSkillGroup `xml:"skillgroup"`
}

type xmlSkillGroup struct {
	Category leaf       `xml:"category"`
	Items    []xmlItems `xml:"items"`
}

type xmlItems struct {
	Item []string `xml:"item"`
}

type xmlExperience struct {
	Jobs []xmlJob `xml:"job"`
}

type xmlJob struct {
	Company          leaf                  `xml:"company"`
	Location         leaf                  `xml:"location"`
	Duration         leaf                  `xml:"duration"`
	Position         leaf                  `xml:"position"`
	Responsibilities []xmlResponsibilities `xml:"responsibilities"`
}

type xmlResponsibilities struct {
	Responsibility []string `xml:"responsibility"`
}

type xmlMargins struct {
	Top    leaf `xml:"top"`
	Bottom leaf `xml:"bottom"`
	Left   leaf `xml:"left"`
	Right  leaf `xml:"right"`
}

// Parse converts résumé XML into a Document.
// Missing elements and missing text default to empty strings (0.75 for margins);
// unknown elements are ignored.
func Parse(xmlText string) (Document, error) {
	return ParseReader(strings.NewReader(xmlText))
}

// ParseReader is Parse over an io.Reader.
func ParseReader(r io.Reader) (Document, error) {
	var raw xmlDocument
	if err := decodeDocument(r, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := Document{
		Education:  []EducationEntry{},
		Skills:     []SkillGroup{},
		Experience: []ExperienceEntry{},
	}

	if len(raw.Personal) > 0 {
		p := raw.Personal[0]
		doc.Personal = Personal{
			Name:     p.Name.text(),
			Email:    p.Email.text(),
			Phone:    p.Phone.text(),
			Location: p.Location.text(),
		}
	}

	for _, section := range raw.Education {
		for _, inst := range section.Institutions {
			doc.Education = append(doc.Education, EducationEntry{
				Institution:    inst.Name.text(),
				Degree:         inst.Degree.text(),
				GPA:            inst.GPA.text(),
				GraduationDate: inst.GraduationDate.text(),
				Location:       inst.Location.text(),
			})
		}
	}

	for _, section := range raw.Skills {
		for _, g := range section.Groups {
			group := SkillGroup{Category: g.Category.text(), Items: []string{}}
			for _, items := range g.Items {
				for _, item := range items.Item {
					if item = strings.TrimSpace(item); item != "" {
						group.Items = append(group.Items, item)
					}
				}
			}
			if group.Empty() {
				continue
			}
			doc.Skills = append(doc.Skills, group)
		}
	}

	for _, section := range raw.Experience {
		for _, job := range section.Jobs {
			entry := ExperienceEntry{
				Company:          job.Company.text(),
				Location:         job.Location.text(),
				Duration:         job.Duration.text(),
				Position:         job.Position.text(),
				Responsibilities: []string{},
			}
			for _, list := range job.Responsibilities {
				for _, res := range list.Responsibility {
					entry.Responsibilities = append(entry.Responsibilities, strings.TrimSpace(res))
				}
			}
			doc.Experience = append(doc.Experience, entry)
		}
	}

	margins, err := parseMargins(raw.Margins)
	if err != nil {
		return Document{}, err
	}
	doc.Margins = margins

	return doc, nil
}

// decodeDocument decodes exactly one root element. Text before the root, a second
// root or an unterminated tail make the document malformed.
func decodeDocument(r io.Reader, raw *xmlDocument) error {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var root *xml.StartElement
	for root == nil {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return errors.New("document has no root element")
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			root = &t
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("text before the root element")
			}
		}
	}
	if err := dec.DecodeElement(raw, root); err != nil {
		return err
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after the root element", t.Name.Local)
		case xml.EndElement:
			return fmt.Errorf("unexpected </%s> after the root element", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("text after the root element")
			}
		}
	}
}

func parseMargins(sections []xmlMargins) (Margins, error) {
	m := DefaultMargins()
	if len(sections) == 0 {
		return m, nil
	}
	s := sections[0]
	fields := []struct {
		name string
		raw  leaf
		dst  *float64
	}{
		{"top", s.Top, &m.Top},
		{"bottom", s.Bottom, &m.Bottom},
		{"left", s.Left, &m.Left},
		{"right", s.Right, &m.Right},
	}
	for _, f := range fields {
		text := f.raw.text()
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Margins{}, fmt.Errorf("%w: %s margin %q is not a number", ErrInvalidMargins, f.name, text)
		}
		*f.dst = v
	}
	return m, nil
}

// Validate rejects margins that are not finite or fall outside [0, MaxMargin].
func (m Margins) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"top", m.Top},
		{"bottom", m.Bottom},
		{"left", m.Left},
		{"right", m.Right},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s margin is not a number", ErrInvalidMargins, f.name)
		}
		if f.v < 0 || f.v > MaxMargin {
			return fmt.Errorf("%w: %s margin %.2f must be between 0 and %.2f inches", ErrInvalidMargins, f.name, f.v, MaxMargin)
		}
	}
	return nil
}
