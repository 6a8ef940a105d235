package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	walkErrorFormat     = "walk %s: %w"
	openZipErrorFormat  = "open zip %s: %w"
	relativeErrorFormat = "relative path %s: %w"
)

// FromDirectory enumerates every regular file below root. Paths keep the root folder name as
// their first segment, matching what a browser directory picker reports.
func FromDirectory(root string) (FileSet, error) {
	cleanRoot := filepath.Clean(root)
	parent := filepath.Dir(cleanRoot)
	files := FileSet{}
	walkErr := filepath.WalkDir(cleanRoot, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		relativePath, relErr := filepath.Rel(parent, filePath)
		if relErr != nil {
			return fmt.Errorf(relativeErrorFormat, filePath, relErr)
		}
		absolutePath := filePath
		files[filepath.ToSlash(relativePath)] = func() (io.ReadCloser, error) {
			return os.Open(absolutePath)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf(walkErrorFormat, root, walkErr)
	}
	return files, nil
}

// FromZip opens a zip archive on disk. The returned closer must be closed once the file set is
// no longer read.
func FromZip(zipPath string) (FileSet, io.Closer, error) {
	zipReader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, nil, fmt.Errorf(openZipErrorFormat, zipPath, err)
	}
	return FromZipReader(&zipReader.Reader), zipReader, nil
}

// FromZipBytes builds a file set over an in-memory zip archive.
func FromZipBytes(content []byte) (FileSet, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	return FromZipReader(zipReader), nil
}

// FromZipReader exposes the regular files of a zip archive. Directory entries are skipped.
func FromZipReader(zipReader *zip.Reader) FileSet {
	files := FileSet{}
	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() || strings.HasSuffix(file.Name, pathSeparator) {
			continue
		}
		zipFile := file
		files[strings.TrimPrefix(zipFile.Name, "./")] = func() (io.ReadCloser, error) {
			return zipFile.Open()
		}
	}
	return files
}

// FromContents builds a file set over in-memory documents keyed by path.
func FromContents(contents map[string]string) FileSet {
	files := make(FileSet, len(contents))
	for filePath, content := range contents {
		documentContent := content
		files[filePath] = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(documentContent)), nil
		}
	}
	return files
}
