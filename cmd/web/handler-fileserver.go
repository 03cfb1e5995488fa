package main

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/myrjola/habitapp/internal/errors"
)

// fileServerHandler serves ui/static. Missing files render the not found page through the session middleware so that
// the navigation reflects the signed-in state.
func (app *application) fileServerHandler(session, noAuth func(http.Handler) http.Handler) (http.Handler, error) {
	fileRoot := path.Join(".", "ui", "static")
	var err error
	if _, err = os.Stat(fileRoot); os.IsNotExist(err) {
		var dir string
		if dir, err = findModuleDir(); err != nil {
			return nil, errors.Wrap(err, "find module dir")
		}
		fileRoot = path.Join(dir, "ui", "static")
	}
	var stat os.FileInfo
	if stat, err = os.Stat(fileRoot); os.IsNotExist(err) || !stat.IsDir() {
		return nil, errors.New("file server root does not exist or is not a directory: " + fileRoot)
	}
	fileServer := http.FileServer(http.Dir(fileRoot))
	notFound := session(http.HandlerFunc(app.notFound))

	return noAuth(cacheForever(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleanPath := filepath.Clean(r.URL.Path)
		if strings.Contains(cleanPath, "..") {
			notFound.ServeHTTP(w, r)
			return
		}
		info, statErr := os.Stat(filepath.Join(fileRoot, cleanPath))
		if statErr != nil || info.IsDir() {
			notFound.ServeHTTP(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	}))), nil
}
