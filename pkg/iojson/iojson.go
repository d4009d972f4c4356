// Package iojson reads and writes JSON from a command line interface
// perspective: pretty-printed output on stdout, input from a file flag or
// piped stdin.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteWith marshals obj as indented JSON to w. Marshal failures are
// reported as a JSON error object on ew so consumers of the stream never
// see a half-written value.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		_, werr := fmt.Fprintf(ew, `{"message":"error marshaling output","data":{"json_error":%s}}%s`, msg, "\n")
		return werr
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// Write calls WriteWith with [os.Stdout] and [os.Stderr].
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}
