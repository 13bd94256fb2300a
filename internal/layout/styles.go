package layout

import (
	"fmt"
	"sort"
)

// Style names shared by every render.
const (
	StyleName          = "Name"
	StyleSectionHeader = "SectionHeader"
	StyleJobTitle      = "JobTitle"
	StyleDateLocation  = "DateLocation"
	StyleJobMeta       = "JobMeta"
	StyleBody          = "Body"
	StyleSkills        = "Skills"
)

// Align is the horizontal alignment of a paragraph.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Color is an 8-bit RGB colour.
type Color struct {
	R, G, B int
}

var (
	black    = Color{0, 0, 0}
	grey     = Color{128, 128, 128}
	ruleGrey = Color{153, 153, 153} // #999999
)

// TextStyle fixes the font, size, colour and spacing of a paragraph.
// Sizes and spacing are in points.
type TextStyle struct {
	Name        string
	Family      string
	FontStyle   string // "", "B", "I" or "BI"
	Size        float64
	Leading     float64
	Color       Color
	SpaceBefore float64
	SpaceAfter  float64
	Align       Align
}

// Rule describes the horizontal line drawn beneath a section header.
type Rule struct {
	Thickness float64
	Color     Color
}

// SectionRule returns the rule drawn under every section header.
func SectionRule() Rule {
	return Rule{Thickness: 0.75, Color: ruleGrey}
}

// registry is a read-only name → style table. It is filled once by newRegistry
// and only ever read afterwards.
type registry struct {
	styles map[string]TextStyle
}

func newRegistry(styles ...TextStyle) registry {
	r := registry{styles: make(map[string]TextStyle, len(styles))}
	for _, s := range styles {
		if _, dup := r.styles[s.Name]; dup {
			panic(fmt.Sprintf("layout: duplicate style %q", s.Name))
		}
		if s.Leading == 0 {
			s.Leading = s.Size * 1.2
		}
		r.styles[s.Name] = s
	}
	return r
}

var styles = newRegistry(
	TextStyle{Name: StyleName, Family: "Times", Size: 18, Color: black, SpaceAfter: 12},
	TextStyle{Name: StyleSectionHeader, Family: "Times", Size: 12, Color: black, SpaceAfter: 6},
	TextStyle{Name: StyleJobTitle, Family: "Times", FontStyle: "B", Size: 10, Color: black},
	TextStyle{Name: StyleDateLocation, Family: "Times", Size: 10, Color: black, Align: AlignRight},
	TextStyle{Name: StyleJobMeta, Family: "Times", FontStyle: "I", Size: 9, Color: grey, SpaceAfter: 4},
	TextStyle{Name: StyleBody, Family: "Times", Size: 10, Leading: 14, Color: black},
	TextStyle{Name: StyleSkills, Family: "Times", FontStyle: "I", Size: 10, Color: black},
)

// Style looks up a named style.
func Style(name string) (TextStyle, bool) {
	s, ok := styles.styles[name]
	return s, ok
}

// MustStyle looks up a named style and panics when it does not exist.
func MustStyle(name string) TextStyle {
	s, ok := Style(name)
	if !ok {
		panic(fmt.Sprintf("layout: unknown style %q", name))
	}
	return s
}

// StyleNames lists the registered style names in sorted order.
func StyleNames() []string {
	names := make([]string, 0, len(styles.styles))
	for name := range styles.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
