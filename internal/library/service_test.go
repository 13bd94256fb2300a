package library

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-git/go-git/v5"

	"github.com/sheasmith19/ezapp/internal/resume"
	"github.com/sheasmith19/ezapp/internal/storage"
	"github.com/sheasmith19/ezapp/internal/versioning"
)

const minimalXML = `<resume><personal_info><name>Jane Doe</name></personal_info></resume>`

type fakeMirror struct {
	put     []string
	deleted []string
	err     error
}

func (m *fakeMirror) Put(_ context.Context, userID string, kind storage.Kind, key string, _ []byte) error {
	m.put = append(m.put, storage.ObjectName(userID, kind, key))
	return m.err
}

func (m *fakeMirror) Delete(_ context.Context, userID string, kind storage.Kind, key string) error {
	m.deleted = append(m.deleted, storage.ObjectName(userID, kind, key))
	return m.err
}

type failingCommitter struct{}

func (failingCommitter) Commit(context.Context, string, []string, string) (string, error) {
	return "", errors.New("index.lock exists")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, committer versioning.Committer, mirror storage.Mirror) (*Service, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewService(store, committer, mirror, discardLogger()), store
}

func TestSaveThenGetMinimal(t *testing.T) {
	svc, store := newService(t, nil, nil)
	ctx := context.Background()

	res, err := svc.Save(ctx, "u1", "Jane Resume", minimalXML, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Key != "Jane_Resume" || res.Committed {
		t.Fatalf("unexpected result %#v", res)
	}
	if want := filepath.Join(store.Root(), "u1", "xml", "Jane_Resume.xml"); res.XMLPath != want {
		t.Fatalf("expected xml at %s, got %s", want, res.XMLPath)
	}
	stored, err := os.ReadFile(res.XMLPath)
	if err != nil || string(stored) != minimalXML {
		t.Fatalf("expected verbatim xml, got %q, %v", stored, err)
	}

	rec, err := svc.Get(ctx, "u1", "Jane_Resume.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := resume.Record{
		SaveName:   "Jane_Resume",
		Personal:   resume.PersonalRecord{Name: "Jane Doe"},
		Education:  []resume.EducationRecord{},
		Skills:     []resume.SkillRecord{},
		Experience: []resume.ExperienceRecord{},
		Margins:    resume.DefaultMargins(),
	}
	if !reflect.DeepEqual(rec, want) {
		t.Fatalf("unexpected record %#v", rec)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	ctx := context.Background()

	first, err := svc.Save(ctx, "u1", "cv", minimalXML, nil)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	a, _ := os.ReadFile(first.PDFPath)
	second, err := svc.Save(ctx, "u1", "cv", minimalXML, nil)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	b, _ := os.ReadFile(second.PDFPath)
	if len(a) == 0 || !bytes.Equal(a, b) {
		t.Fatalf("expected byte-identical pdfs")
	}
}

func TestSaveMarginOverrideIsPersisted(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	ctx := context.Background()

	m := resume.Margins{Top: 1, Bottom: 1, Left: 1, Right: 1}
	if _, err := svc.Save(ctx, "u1", "cv", minimalXML, &m); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, err := svc.Get(ctx, "u1", "cv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Margins != m || rec.Personal.Name != "Jane Doe" {
		t.Fatalf("unexpected record %#v", rec)
	}
}

func TestSaveRejectsBeforeWriting(t *testing.T) {
	svc, store := newService(t, nil, nil)
	ctx := context.Background()

	bad := resume.Margins{Top: -1, Bottom: 0.75, Left: 0.75, Right: 0.75}
	cases := []struct {
		name    string
		display string
		xml     string
		margins *resume.Margins
		want    error
	}{
		{"malformed", "cv", "<resume><personal_info>", nil, resume.ErrMalformedDocument},
		{"negative margin", "cv", minimalXML, &bad, resume.ErrInvalidMargins},
		{"margin in xml", "cv", `<resume><margins><left>9</left></margins></resume>`, nil, resume.ErrInvalidMargins},
		{"bad key", "../cv", minimalXML, nil, resume.ErrInvalidKey},
		{"dot key", ".cv", minimalXML, nil, resume.ErrInvalidKey},
	}
	for _, tc := range cases {
		if _, err := svc.Save(ctx, "u1", tc.display, tc.xml, tc.margins); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := os.Stat(filepath.Join(store.Root(), "u1")); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written, stat err %v", err)
	}
}

func TestSaveSubstitutesUnsupportedCharacters(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	var logs bytes.Buffer
	svc := NewService(store, nil, nil, slog.New(slog.NewTextHandler(&logs, nil)))
	ctx := context.Background()

	res, err := svc.Save(ctx, "u1", "cv", `<resume><personal_info><name>Łukasz Dvořák 李</name></personal_info></resume>`, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Substituted != "Łř李" {
		t.Fatalf("unexpected substitutions %q", res.Substituted)
	}
	if !bytes.Contains(logs.Bytes(), []byte("substituted characters")) {
		t.Fatalf("expected a warning, got %q", logs.String())
	}

	rec, err := svc.Get(ctx, "u1", "cv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Personal.Name != "Łukasz Dvořák 李" {
		t.Fatalf("stored xml must keep the original text, got %q", rec.Personal.Name)
	}
}

func TestGetWithoutXMLIsNotFound(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "u1", "other", minimalXML, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.Get(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteWithOnlyPDF(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	ctx := context.Background()

	res, err := svc.Save(ctx, "u1", "cv", minimalXML, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.Remove(res.XMLPath); err != nil {
		t.Fatalf("remove xml: %v", err)
	}

	del, err := svc.Delete(ctx, "u1", "cv.pdf")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !reflect.DeepEqual(del.DeletedFiles, []string{"pdf/cv.pdf"}) {
		t.Fatalf("unexpected deleted files %v", del.DeletedFiles)
	}

	if _, err := svc.Delete(ctx, "u1", "cv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListAndEntries(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	ctx := context.Background()

	names, err := svc.List(ctx, "nobody")
	if err != nil || len(names) != 0 {
		t.Fatalf("expected empty list, got %v, %v", names, err)
	}

	for _, n := range []string{"b", "a"} {
		if _, err := svc.Save(ctx, "u1", n, minimalXML, nil); err != nil {
			t.Fatalf("save %s: %v", n, err)
		}
	}
	names, err = svc.List(ctx, "u1")
	if err != nil || !reflect.DeepEqual(names, []string{"a.pdf", "b.pdf"}) {
		t.Fatalf("unexpected list %v, %v", names, err)
	}

	entries, err := svc.Entries(ctx, "u1")
	if err != nil || len(entries) != 2 {
		t.Fatalf("unexpected entries %v, %v", entries, err)
	}
	if entries[0].Name != "a.pdf" || entries[0].Filename != "a.pdf" || entries[0].Size == 0 {
		t.Fatalf("unexpected entry %#v", entries[0])
	}
}

func TestOpen(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	ctx := context.Background()

	if _, _, err := svc.Open(ctx, "u1", "cv.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Save(ctx, "u1", "cv", minimalXML, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	rc, info, err := svc.Open(ctx, "u1", "cv.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	head := make([]byte, 5)
	if _, err := io.ReadFull(rc, head); err != nil || string(head) != "%PDF-" || info.Name != "cv.pdf" {
		t.Fatalf("unexpected download %q %#v %v", head, info, err)
	}
}

func TestSaveCommitsIntoRepository(t *testing.T) {
	svc, store := newService(t, versioning.NewGitCommitter("ezapp", "ezapp@localhost"), nil)
	if _, err := versioning.InitRepository(store.Root()); err != nil {
		t.Fatalf("init repo: %v", err)
	}
	ctx := context.Background()

	res, err := svc.Save(ctx, "u1", "cv", minimalXML, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.Committed || res.CommitHash == "" {
		t.Fatalf("expected commit, got %#v", res)
	}

	repo, err := git.PlainOpen(store.Root())
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if commit.Message != "Update resume: cv.pdf" {
		t.Fatalf("unexpected message %q", commit.Message)
	}

	again, err := svc.Save(ctx, "u1", "cv", minimalXML, nil)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if again.Committed {
		t.Fatalf("expected unchanged save to skip commit")
	}
}

func TestCommitAndMirrorFailuresDoNotFailSave(t *testing.T) {
	mirror := &fakeMirror{err: errors.New("bucket offline")}
	svc, _ := newService(t, failingCommitter{}, mirror)
	ctx := context.Background()

	res, err := svc.Save(ctx, "u1", "cv", minimalXML, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Committed {
		t.Fatalf("expected uncommitted save")
	}
	if !reflect.DeepEqual(mirror.put, []string{"u1/xml/cv.xml", "u1/pdf/cv.pdf"}) {
		t.Fatalf("unexpected mirror uploads %v", mirror.put)
	}

	if _, err := svc.Delete(ctx, "u1", "cv"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !reflect.DeepEqual(mirror.deleted, []string{"u1/xml/cv.xml", "u1/pdf/cv.pdf"}) {
		t.Fatalf("unexpected mirror deletes %v", mirror.deleted)
	}
}
