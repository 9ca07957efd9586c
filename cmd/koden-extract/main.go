// koden-extract runs the extraction pipeline over recognized face texts
// from the command line, without touching a database. Each argument is
// face=path, where path is a text file holding that face's recognized
// text; "-" reads the front face from stdin.
//
//	koden-extract front=front.txt back=back.txt innerFront=inner.txt
package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rfujimura/koden-tracker/constants"
	"github.com/rfujimura/koden-tracker/internal/extract"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		logger.Error("usage", "cmd", "koden-extract face=path [face=path ...]")
		os.Exit(2)
	}

	faceText := extract.FaceText{}
	for _, arg := range os.Args[1:] {
		key, path, ok := strings.Cut(arg, "=")
		if !ok {
			logger.Error("argument must be face=path", "arg", arg)
			os.Exit(2)
		}
		face, ok := constants.ParseFace(key)
		if !ok {
			logger.Error("unknown face", "face", key)
			os.Exit(2)
		}
		var raw []byte
		var err error
		if path == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			logger.Error("reading face text", "face", face, "path", path, "error", err)
			os.Exit(1)
		}
		faceText[face] = string(raw)
	}

	result, trace := extract.ExtractDetailed(faceText)
	dtype := extract.ClassifyDonationType(faceText[constants.FaceFront], nil)

	out := map[string]any{
		"extraction":    result,
		"donation_type": dtype,
		"sources":       trace.Sources,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encoding result", "error", err)
		os.Exit(1)
	}
}
