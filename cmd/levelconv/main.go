// levelconv converts level files between JSON and YAML.
//
// Usage:
//
//	go run ./cmd/levelconv [-relations path] <in.json|in.yaml> <out.json|out.yaml>
//
// The format of each side follows its extension. Entity order in the output
// is top row first, left to right.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pawsteps/engine/internal/data"
	"github.com/pawsteps/engine/internal/world"
)

func main() {
	relPath := flag.String("relations", "", "relations.yaml overlay (default: built-in table)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: levelconv [-relations path] <in> <out>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := convert(flag.Arg(0), flag.Arg(1), *relPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func convert(in, out, relPath string) error {
	var rel *data.RelationTable
	if relPath != "" {
		var err error
		if rel, err = data.LoadRelationTable(relPath); err != nil {
			return err
		}
	}

	l, err := world.LoadFile(in, rel)
	if err != nil {
		return err
	}
	for _, p := range l.DuplicatePositions() {
		fmt.Fprintf(os.Stderr, "warning: duplicate position %s, earlier entity dropped\n", p)
	}
	if err := world.SaveFile(out, l); err != nil {
		return err
	}

	fmt.Printf("%s (%s) -> %s (%s): %d entities\n",
		in, world.FormatFromPath(in), out, world.FormatFromPath(out), l.Len())
	return nil
}
