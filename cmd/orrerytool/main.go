// orrerytool is a CLI utility for inspecting and validating OML scene
// documents without opening a window.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orrery-engine/orrery/internal/config"
	"github.com/orrery-engine/orrery/pkg/animation"
	"github.com/orrery-engine/orrery/pkg/oml"
	"github.com/orrery-engine/orrery/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "validate", "check":
		cmdValidate(args)
	case "tracks":
		cmdTracks(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`orrerytool - OML scene document utility

Usage:
  orrerytool <command> [options]

Commands:
  info <scene.oml>       Show document summary
  validate <scene.oml>   Check the document and its animation tracks
  tracks <scene.oml>     List resolved animation tracks
  config [-o path]       Write a default config file

Examples:
  orrerytool info examples/solar.oml
  orrerytool validate examples/solar.oml
  orrerytool tracks examples/solar.oml
  orrerytool config -o ./orrery.yaml`)
}

// parseDoc loads a document or exits. Shared by every inspection
// command.
func parseDoc(path string) *oml.Document {
	doc, err := oml.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return doc
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: orrerytool info <scene.oml>")
		os.Exit(1)
	}

	doc := parseDoc(args[0])

	fmt.Printf("Document:     %s\n", args[0])
	fmt.Printf("Geometries:   %d\n", len(doc.Geometries))
	fmt.Printf("Materials:    %d\n", len(doc.Materials))
	fmt.Printf("Scenes:       %d\n", len(doc.Scenes))
	fmt.Printf("Degradations: %d\n", len(doc.Degradations))
	fmt.Println()

	for i := range doc.Scenes {
		sc := &doc.Scenes[i]
		id := sc.ID
		if id == "" {
			id = "(unnamed)"
		}

		graph, err := scene.NewBuilder(nil).Build(doc, sc.ID, scene.NullBackend{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building scene %s: %v\n", id, err)
			continue
		}

		fmt.Printf("Scene %s:\n", id)
		fmt.Printf("  nodes:   %d\n", graph.Registry.Len())
		fmt.Printf("  cameras: %d\n", len(sc.Cameras))
		fmt.Printf("  lights:  %d\n", len(sc.Lights))
		fmt.Printf("  tracks:  %d\n", len(graph.Animations))
		fmt.Printf("  ambient: %.2f\n", sc.Ambient)
	}
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: orrerytool validate <scene.oml>")
		os.Exit(1)
	}

	doc := parseDoc(args[0])
	issues := 0

	for _, d := range doc.Degradations {
		fmt.Printf("degraded: %s\n", d)
		issues++
	}

	for i := range doc.Scenes {
		sc := &doc.Scenes[i]
		graph, err := scene.NewBuilder(nil).Build(doc, sc.ID, scene.NullBackend{})
		if err != nil {
			fmt.Printf("error: scene %q: %v\n", sc.ID, err)
			issues++
			continue
		}

		// Register every track against a throwaway engine so the
		// descriptors go through the same checks the viewer applies.
		eng := animation.NewEngine(animation.Config{})
		for _, a := range graph.Animations {
			track, err := animation.TrackFromAnimate(a)
			if err != nil {
				fmt.Printf("rejected: %v\n", err)
				issues++
				continue
			}
			if err := eng.RegisterTrack(track); err != nil {
				fmt.Printf("rejected: %v\n", err)
				issues++
				continue
			}
			// Missing targets are skipped at runtime, not errors, so
			// they warn without failing validation.
			if _, ok := graph.Registry.Lookup(track.TargetID); !ok {
				fmt.Printf("warning: track targets unknown node %q\n", track.TargetID)
			}
		}
	}

	if issues > 0 {
		fmt.Printf("\n%d issue(s) found\n", issues)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func cmdTracks(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: orrerytool tracks <scene.oml>")
		os.Exit(1)
	}

	doc := parseDoc(args[0])

	for i := range doc.Scenes {
		sc := &doc.Scenes[i]
		id := sc.ID
		if id == "" {
			id = "(unnamed)"
		}

		graph, err := scene.NewBuilder(nil).Build(doc, sc.ID, scene.NullBackend{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building scene %s: %v\n", id, err)
			continue
		}

		fmt.Printf("Scene %s: %d track(s)\n", id, len(graph.Animations))
		for _, a := range graph.Animations {
			track, err := animation.TrackFromAnimate(a)
			if err != nil {
				fmt.Printf("  ! %s.%s: %v\n", a.TargetID, a.Attribute, err)
				continue
			}

			mode := "from-to"
			if track.Keyframed() {
				mode = fmt.Sprintf("keyframes(%d)", len(track.Values))
			}
			repeat := fmt.Sprintf("%d", track.Repeat)
			if track.Repeat == animation.RepeatIndefinite {
				repeat = "indefinite"
			}
			fmt.Printf("  %-16s %-10s %-13s dur=%-6.3g delay=%-6.3g repeat=%-10s fill=%s\n",
				track.TargetID, track.Property, mode,
				track.Duration, track.Delay, repeat, track.Fill)
		}
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	out := fs.String("o", "", "Output path (default: user config dir)")
	fs.Parse(args)

	cfg := config.Default()

	path := *out
	var err error
	if path == "" {
		err = cfg.Save()
		path = filepath.Join(config.ConfigDir(), "orrery.yaml")
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config: %s\n", path)
}
