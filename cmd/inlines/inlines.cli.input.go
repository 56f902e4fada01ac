package main

import (
	"io"
	"os"
)

// source is one input text and the name errors report it under.
type source struct {
	name string
	text string
}

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// readSources reads every path in order. No paths means stdin.
func readSources(paths []string, stdin io.Reader) ([]source, error) {
	if len(paths) == 0 {
		paths = []string{InputSourceStdin}
	}

	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		data, err := readInput(path, stdin)
		if err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgReadFileFailed, err)
		}
		name := path
		if path == InputSourceStdin {
			name = StdinDisplayName
		}
		sources = append(sources, source{name: name, text: string(data)})
	}
	return sources, nil
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}
