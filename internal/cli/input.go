package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// inputError carries the error code for a record that could not be loaded.
type inputError struct {
	code string
	err  error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

// readRecord loads a raw form record from path ("-" reads stdin). Files
// ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func readRecord(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		code := ErrCodeReadFailed
		if os.IsNotExist(err) {
			code = ErrCodeNotFound
		}
		return nil, &inputError{code: code, err: fmt.Errorf("reading record: %w", err)}
	}

	var record map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &record)
	default:
		err = json.Unmarshal(data, &record)
	}
	if err != nil {
		return nil, &inputError{code: ErrCodeParseFailed, err: fmt.Errorf("parsing record: %w", err)}
	}
	if record == nil {
		record = map[string]any{}
	}
	return record, nil
}

// failInput reports a readRecord error.
func failInput(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var ie *inputError
	if errors.As(err, &ie) {
		code = ie.code
	}
	return f.Fail(ExitCommandError, code, err.Error(), nil)
}
