package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/i18n"
)

type BaseTemplateData struct {
	Authenticated bool
	// Today is the caller's current day as a yyyy-mm-dd path segment.
	Today       string
	CurrentPath string
	Language    i18n.Language
	Languages   []i18n.Language
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	return BaseTemplateData{
		Authenticated: contexthelpers.IsAuthenticated(ctx),
		Today:         habits.Key(contexthelpers.Today(ctx)),
		CurrentPath:   contexthelpers.CurrentPath(ctx),
		Language:      contexthelpers.Language(ctx),
		Languages:     i18n.SupportedLanguages(),
	}
}

// findModuleDir locates the directory containing the go.mod file.
func findModuleDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "get working directory")
	}

	for {
		if _, err = os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break
		}
		dir = parentDir
	}

	return "", os.ErrNotExist
}

// resolveAndVerifyTemplatePath resolves the template path and verifies it.
//
// If the templatePath is empty, it will attempt to find it from the module root.
func resolveAndVerifyTemplatePath(templatePath string) (string, error) {
	if templatePath == "" {
		modulePath, err := findModuleDir()
		if err != nil {
			return "", errors.Wrap(err, "find module dir")
		}
		templatePath = filepath.Join(modulePath, "ui", "templates")
	}
	stat, err := os.Stat(templatePath)
	if err != nil {
		return "", errors.Wrap(err, "template path not found", slog.String("path", templatePath))
	}
	if !stat.IsDir() {
		return "", errors.New("template path is not a directory: " + templatePath)
	}
	return templatePath, nil
}
