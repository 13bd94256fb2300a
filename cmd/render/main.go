package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sheasmith19/ezapp/internal/layout"
	"github.com/sheasmith19/ezapp/internal/pdf"
	"github.com/sheasmith19/ezapp/internal/resume"
	"github.com/sheasmith19/ezapp/internal/storage"
	"github.com/sheasmith19/ezapp/internal/versioning"
)

func main() {
	var (
		xmlPath  = flag.String("xml", "", "résumé XML to render (required)")
		outPath  = flag.String("out", "", "PDF output path (default: XML path with .pdf)")
		commit   = flag.Bool("commit", false, "commit the XML and PDF after rendering")
		repoDir  = flag.String("repo", "", "repository root for --commit (default: directory of --out)")
		initRepo = flag.Bool("init-repo", false, "create the repository when it does not exist")
		message  = flag.String("message", "", "commit message (default: \"Update resume: <file>.pdf\")")
		author   = flag.String("author", "ezapp", "commit author name")
		email    = flag.String("email", "ezapp@localhost", "commit author email")
	)
	flag.Parse()

	in := strings.TrimSpace(*xmlPath)
	if in == "" {
		log.Fatal("missing required flag: --xml")
	}
	out := strings.TrimSpace(*outPath)
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".pdf"
	}

	if err := render(in, out); err != nil {
		log.Fatalf("render %s: %v", in, err)
	}
	fmt.Printf("rendered %s -> %s\n", in, out)

	if !*commit {
		return
	}

	root := *repoDir
	if root == "" {
		root = filepath.Dir(out)
	}
	if *initRepo {
		if _, err := versioning.InitRepository(root); err != nil {
			log.Fatalf("init repository: %v", err)
		}
	}
	msg := *message
	if msg == "" {
		msg = "Update resume: " + filepath.Base(out)
	}

	paths, err := absPaths(in, out)
	if err != nil {
		log.Fatalf("resolve paths: %v", err)
	}
	committer := versioning.NewGitCommitter(*author, *email)
	hash, err := committer.Commit(context.Background(), root, paths, msg)
	if err != nil {
		log.Fatalf("commit: %v", err)
	}
	fmt.Printf("committed %s\n", hash)
}

func render(in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := resume.ParseReader(f)
	if err != nil {
		return err
	}
	if err := doc.Margins.Validate(); err != nil {
		return err
	}
	rendered, err := pdf.Render(layout.Build(doc), doc.Margins)
	if err != nil {
		return err
	}
	if len(rendered.Substituted) > 0 {
		log.Printf("warning: substituted characters the PDF fonts cannot draw: %s", string(rendered.Substituted))
	}
	return storage.WriteFileAtomic(out, rendered.PDF)
}

func absPaths(paths ...string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}
