package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
)

const (
	errMessageFileNotFound      = "file not found in archive"
	errMessageMissingAssignment = "no assignment prefix found"
	errMessageUnexpectedShape   = "unexpected data shape"
	errMessageNilOpener         = "file opener is nil"
	assignmentPrefixPattern     = `^\s*[A-Za-z_$][A-Za-z0-9_$]*(?:\.[A-Za-z_$][A-Za-z0-9_$]*)*\s*=\s*`
	statementTerminator         = ";"
	openErrorFormat             = "open: %w"
	readErrorFormat             = "read: %w"
	decodeErrorFormat           = "decode json: %w"
	shapeErrorFormat            = "%w: %v"
	missingKeyErrorFormat       = "%w: missing %q"
)

var (
	// ErrFileNotFound reports that an expected dataset file is absent from the archive.
	ErrFileNotFound = errors.New(errMessageFileNotFound)
	// ErrMissingAssignment reports a Twitter/X data file without its "window.YTD.x.part0 =" prefix.
	ErrMissingAssignment = errors.New(errMessageMissingAssignment)
	// ErrUnexpectedShape reports decoded JSON that lacks the structure a dataset parser expects.
	ErrUnexpectedShape = errors.New(errMessageUnexpectedShape)

	errNilOpener = errors.New(errMessageNilOpener)

	reAssignmentPrefix = regexp.MustCompile(assignmentPrefixPattern)
	byteOrderMark      = []byte("\uFEFF")
)

// MissingKey builds a shape error naming the absent top-level key.
func MissingKey(key string) error {
	return fmt.Errorf(missingKeyErrorFormat, ErrUnexpectedShape, key)
}

// ReadAll loads the full content behind an opener.
func ReadAll(open Opener) ([]byte, error) {
	if open == nil {
		return nil, errNilOpener
	}
	reader, err := open()
	if err != nil {
		return nil, fmt.Errorf(openErrorFormat, err)
	}
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf(readErrorFormat, err)
	}
	return content, nil
}

// DecodeJSON decodes a plain JSON file into target.
func DecodeJSON(open Opener, target any) error {
	content, err := ReadAll(open)
	if err != nil {
		return err
	}
	return unmarshal(bytes.TrimPrefix(content, byteOrderMark), target)
}

// DecodeAssignedJSON decodes a JSON payload that is wrapped in a JavaScript assignment such as
// "window.YTD.tweets.part0 = [...]". The prefix is mandatory.
func DecodeAssignedJSON(open Opener, target any) error {
	content, err := ReadAll(open)
	if err != nil {
		return err
	}
	payload, err := StripAssignment(content)
	if err != nil {
		return err
	}
	return unmarshal(payload, target)
}

// StripAssignment removes the leading assignment expression and a trailing statement terminator.
func StripAssignment(content []byte) ([]byte, error) {
	trimmed := bytes.TrimPrefix(content, byteOrderMark)
	location := reAssignmentPrefix.FindIndex(trimmed)
	if location == nil {
		return nil, ErrMissingAssignment
	}
	payload := bytes.TrimSpace(trimmed[location[1]:])
	payload = bytes.TrimSuffix(payload, []byte(statementTerminator))
	return payload, nil
}

func unmarshal(payload []byte, target any) error {
	if err := json.Unmarshal(payload, target); err != nil {
		var typeError *json.UnmarshalTypeError
		if errors.As(err, &typeError) {
			return fmt.Errorf(shapeErrorFormat, ErrUnexpectedShape, err)
		}
		return fmt.Errorf(decodeErrorFormat, err)
	}
	return nil
}
