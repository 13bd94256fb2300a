package resume

import (
	"errors"
	"reflect"
	"testing"
)

const fullResumeXML = `<?xml version="1.0" encoding="UTF-8"?>
<resume>
  <experience>
    <job>
      <company>Initech</company>
      <location>Austin, TX</location>
      <duration>2019 - 2023</duration>
      <position>Engineer</position>
      <responsibilities>
        <responsibility>Shipped TPS reports</responsibility>
        <responsibility></responsibility>
        <responsibility>  Fixed the stapler  </responsibility>
      </responsibilities>
    </job>
  </experience>
  <personal_info>
    <name>Jane Doe</name>
    <email>jane@example.com</email>
    <phone>555-0100</phone>
    <location>Austin, TX</location>
  </personal_info>
  <education>
    <institution>
      <name>State University</name>
      <degree>B.S. Computer Science</degree>
      <gpa>3.8</gpa>
      <graduation_date>May 2019</graduation_date>
      <location>Austin, TX</location>
    </institution>
  </education>
  <skills>
    <skillgroup>
      <category>Languages</category>
      <items><item>Go</item><item></item><item>SQL</item></items>
    </skillgroup>
    <skillgroup>
      <category></category>
      <items></items>
    </skillgroup>
  </skills>
  <margins><top>1.0</top><bottom>0.5</bottom><left>1</left><right>1.25</right></margins>
  <hobbies><hobby>Chess</hobby></hobbies>
</resume>`

func TestParseFullDocument(t *testing.T) {
	doc, err := Parse(fullResumeXML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := Document{
		Personal: Personal{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100", Location: "Austin, TX"},
		Education: []EducationEntry{{
			Institution:    "State University",
			Degree:         "B.S. Computer Science",
			GPA:            "3.8",
			GraduationDate: "May 2019",
			Location:       "Austin, TX",
		}},
		Skills: []SkillGroup{{Category: "Languages", Items: []string{"Go", "SQL"}}},
		Experience: []ExperienceEntry{{
			Company:          "Initech",
			Location:         "Austin, TX",
			Duration:         "2019 - 2023",
			Position:         "Engineer",
			Responsibilities: []string{"Shipped TPS reports", "", "Fixed the stapler"},
		}},
		Margins: Margins{Top: 1.0, Bottom: 0.5, Left: 1, Right: 1.25},
	}
	if !reflect.DeepEqual(doc, want) {
		t.Fatalf("unexpected document:\n got %#v\nwant %#v", doc, want)
	}
}

func TestParseMissingLeavesDefaultToEmpty(t *testing.T) {
	doc, err := Parse(`<resume><education><institution><name>MIT</name></institution></education></resume>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Education) != 1 {
		t.Fatalf("expected 1 education entry, got %d", len(doc.Education))
	}
	got := doc.Education[0]
	if got.Institution != "MIT" || got.GPA != "" || got.Degree != "" || got.GraduationDate != "" || got.Location != "" {
		t.Fatalf("unexpected entry: %#v", got)
	}
	if doc.Margins != DefaultMargins() {
		t.Fatalf("expected default margins, got %#v", doc.Margins)
	}
}

func TestParseMinimalDocument(t *testing.T) {
	doc, err := Parse(`<resume><personal_info><name>Jane Doe</name></personal_info></resume>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Personal != (Personal{Name: "Jane Doe"}) {
		t.Fatalf("unexpected personal: %#v", doc.Personal)
	}
	if doc.Education == nil || doc.Skills == nil || doc.Experience == nil {
		t.Fatalf("expected empty, non-nil sections")
	}
}

func TestParseDropsEmptySkillGroups(t *testing.T) {
	doc, err := Parse(`<resume><skills>
		<skillgroup><category/><items><item>  </item></items></skillgroup>
		<skillgroup><category>Tools</category></skillgroup>
		<skillgroup><items><item>Vim</item></items></skillgroup>
	</skills></resume>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []SkillGroup{
		{Category: "Tools", Items: []string{}},
		{Category: "", Items: []string{"Vim"}},
	}
	if !reflect.DeepEqual(doc.Skills, want) {
		t.Fatalf("unexpected skills: %#v", doc.Skills)
	}
}

func TestParseJobWithoutResponsibilities(t *testing.T) {
	doc, err := Parse(`<resume><experience><job><company>Acme</company></job></experience></resume>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Experience) != 1 || len(doc.Experience[0].Responsibilities) != 0 {
		t.Fatalf("unexpected experience: %#v", doc.Experience)
	}
}

func TestParseConcatenatesRepeatedSections(t *testing.T) {
	doc, err := Parse(`<resume>
		<education><institution><name>A</name></institution></education>
		<education><institution><name>B</name></institution><institution><name>C</name></institution></education>
	</resume>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var names []string
	for _, e := range doc.Education {
		names = append(names, e.Institution)
	}
	if !reflect.DeepEqual(names, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"unclosed tag":   "<resume><personal_info><name>Jane</personal_info></resume>",
		"invalid entity": "<resume><personal_info><name>A &bogus; B</name></personal_info></resume>",
		"not xml":        "just some text",
		"trailing open":  "<resume><personal_info><name>Jane</name></personal_info></resume><unclosed>",
		"extra close":    "<resume></resume></resume>",
		"text before":    "garbage <resume></resume>",
		"text after":     "<resume></resume> trailing",
		"two roots":      "<a></a><b></b>",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(input)
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestParseAllowsWhitespaceAroundRoot(t *testing.T) {
	doc, err := Parse("\n  <resume><personal_info><name>Jane</name></personal_info></resume>\n<!-- end -->\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Personal.Name != "Jane" {
		t.Fatalf("unexpected name %q", doc.Personal.Name)
	}
}

func TestParseDeclaredEncoding(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><resume><personal_info><name>Ren\xe9e</name></personal_info></resume>"
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Personal.Name != "Renée" {
		t.Fatalf("unexpected name %q", doc.Personal.Name)
	}
}

func TestParseMarginsPartial(t *testing.T) {
	doc, err := Parse(`<resume><margins><top>1.5</top><left></left></margins></resume>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Margins{Top: 1.5, Bottom: 0.75, Left: 0.75, Right: 0.75}
	if doc.Margins != want {
		t.Fatalf("unexpected margins: %#v", doc.Margins)
	}
}

func TestParseMarginsNotANumber(t *testing.T) {
	for _, v := range []string{"wide", "NaN", "Inf"} {
		_, err := Parse(`<resume><margins><top>` + v + `</top></margins></resume>`)
		if !errors.Is(err, ErrInvalidMargins) {
			t.Fatalf("%s: expected ErrInvalidMargins, got %v", v, err)
		}
	}
}

func TestMarginsValidate(t *testing.T) {
	if err := DefaultMargins().Validate(); err != nil {
		t.Fatalf("default margins rejected: %v", err)
	}
	if err := (Margins{Top: 1, Bottom: 1, Left: 1, Right: 1}).Validate(); err != nil {
		t.Fatalf("1in margins rejected: %v", err)
	}
	bad := []Margins{
		{Top: -0.1, Bottom: 1, Left: 1, Right: 1},
		{Top: 1, Bottom: 1, Left: 1, Right: MaxMargin + 0.01},
	}
	for _, m := range bad {
		if err := m.Validate(); !errors.Is(err, ErrInvalidMargins) {
			t.Fatalf("expected ErrInvalidMargins for %#v, got %v", m, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	first, err := Parse(fullResumeXML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	encoded, err := Encode(first)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := Parse(string(encoded))
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, encoded)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", second, first)
	}
}

func TestEncodeEscapesMarkup(t *testing.T) {
	doc := Document{
		Personal:   Personal{Name: "Tom & Jerry <Cartoons>"},
		Education:  []EducationEntry{},
		Skills:     []SkillGroup{},
		Experience: []ExperienceEntry{},
		Margins:    DefaultMargins(),
	}
	encoded, err := Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Parse(string(encoded))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if back.Personal.Name != doc.Personal.Name {
		t.Fatalf("name changed: %q", back.Personal.Name)
	}
}
