package sharedtest

import (
	"os"
)

// WithTempFileContaining creates a temporary file with the given content, passes its name to the
// action, then deletes the file.
func WithTempFileContaining(data []byte, action func(filename string)) {
	f, err := os.CreateTemp("", "catalog-test")
	if err != nil {
		panic(err)
	}
	name := f.Name()
	defer os.Remove(name)
	_, err = f.Write(data)
	_ = f.Close()
	if err != nil {
		panic(err)
	}
	action(name)
}
