// Command gltfpack converts glTF 2.0 assets into batched binary containers.
//
//	gltfpack pack [flags] scene.gltf [more.glb ...]
//	gltfpack inspect [flags] scene.gltfpack
//	gltfpack watch [flags] scene.gltf [more.glb ...]
package main

import (
	"flag"
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: gltfpack <command> [flags] <files>

commands:
  pack      convert glTF/GLB sources into containers
  inspect   list the chunks and scene of a container
  watch     pack sources and re-pack them when they change

run "gltfpack <command> -h" for the flags of a command
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "pack":
		err = runPack(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "gltfpack: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gltfpack: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs parses a subcommand's flags and requires at least one positional argument.
func parseArgs(name string, args []string) (*flags, []string, error) {
	f := &flags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f.register(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: gltfpack %s [flags] <files>\n", name)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, nil, fmt.Errorf("%s: no input files", name)
	}
	return f, fs.Args(), nil
}
