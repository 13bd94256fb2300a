package layout

import (
	"strings"

	"github.com/sheasmith19/ezapp/internal/resume"
)

const (
	entrySpacing   = 8
	contactSpacing = 8
	sectionSpacing = 8
)

// Build maps a document onto its ordered block sequence.
// Sections always come out as Personal, Education, Skills, Experience.
func Build(doc resume.Document) []Block {
	blocks := make([]Block, 0, 16)
	blocks = appendPersonal(blocks, doc.Personal)
	blocks = appendEducation(blocks, doc.Education)
	blocks = appendSkills(blocks, doc.Skills)
	blocks = appendExperience(blocks, doc.Experience)
	return blocks
}

func appendPersonal(blocks []Block, p resume.Personal) []Block {
	blocks = append(blocks, Paragraph{Style: StyleName, Text: p.Name})

	contact := make([]string, 0, 3)
	for _, part := range []string{p.Email, p.Phone, p.Location} {
		if part != "" {
			contact = append(contact, part)
		}
	}
	if len(contact) > 0 {
		blocks = append(blocks, Paragraph{Style: StyleBody, Text: strings.Join(contact, " | ")})
	}
	return append(blocks, Spacer{Height: contactSpacing})
}

func appendEducation(blocks []Block, entries []resume.EducationEntry) []Block {
	if len(entries) == 0 {
		return blocks
	}
	blocks = append(blocks, SectionHeader{Title: "Education"})
	for _, e := range entries {
		blocks = append(blocks,
			Spacer{Height: entrySpacing},
			HeaderTable{
				Title: e.Institution,
				Meta:  e.Degree + " | GPA: " + e.GPA,
				Right: []string{e.GraduationDate, e.Location},
			},
		)
	}
	return append(blocks, Spacer{Height: sectionSpacing})
}

func appendSkills(blocks []Block, groups []resume.SkillGroup) []Block {
	lines := make([]Block, 0, len(groups))
	for _, g := range groups {
		if g.Empty() {
			continue
		}
		lines = append(lines, SkillLine{Category: g.Category, Items: g.Items})
	}
	if len(lines) == 0 {
		return blocks
	}
	blocks = append(blocks, SectionHeader{Title: "Skills"})
	blocks = append(blocks, lines...)
	return append(blocks, Spacer{Height: sectionSpacing})
}

func appendExperience(blocks []Block, jobs []resume.ExperienceEntry) []Block {
	if len(jobs) == 0 {
		return blocks
	}
	blocks = append(blocks, SectionHeader{Title: "Experience"})
	for _, j := range jobs {
		blocks = append(blocks,
			Spacer{Height: entrySpacing},
			HeaderTable{
				Title: j.Company,
				Meta:  j.Position,
				Right: []string{j.Duration, j.Location},
			},
		)
		for _, r := range j.Responsibilities {
			blocks = append(blocks, Bullet{Text: r})
		}
	}
	return blocks
}
