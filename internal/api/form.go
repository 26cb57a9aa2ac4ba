package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
)

// File es una parte de archivo de un formulario multipart.
type File struct {
	Name    string
	Content io.Reader
}

// OpenFile abre path para adjuntarlo; el llamador debe cerrar el *os.File devuelto.
func OpenFile(path string) (File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, nil, err
	}
	return File{Name: filepath.Base(path), Content: f}, f, nil
}

// Form es un formulario multipart con campos de texto y archivos.
type Form struct {
	Fields map[string]string
	Files  map[string]File
}

func (f Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, key := range sortedKeys(f.Fields) {
		if err := w.WriteField(key, f.Fields[key]); err != nil {
			return nil, "", err
		}
	}
	fileKeys := make([]string, 0, len(f.Files))
	for k := range f.Files {
		fileKeys = append(fileKeys, k)
	}
	sort.Strings(fileKeys)
	for _, key := range fileKeys {
		file := f.Files[key]
		part, err := w.CreateFormFile(key, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
