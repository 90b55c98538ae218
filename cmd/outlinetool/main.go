// outlinetool is a CLI utility that adds crease outlines to glTF assets.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-outline/internal/assets"
	"github.com/Faultbox/midgard-outline/internal/config"
	"github.com/Faultbox/midgard-outline/internal/logger"
	"github.com/Faultbox/midgard-outline/pkg/gltfasset"
	"github.com/Faultbox/midgard-outline/pkg/outline"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(args)
	case "generate", "gen":
		err = cmdGenerate(cfg, args)
	case "edges":
		err = cmdEdges(cfg, args)
	case "cube":
		err = cmdCube(cfg, args)
	case "init-config":
		err = cmdInitConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`outlinetool - glTF crease outline generator

Usage:
  outlinetool [flags] <command> [args]

Commands:
  info <file.gltf>                        Show meshes, primitives and outline state
  generate <in.gltf> <out.gltf|out.glb>   Add outline index buffers and save
  edges <file.gltf> <mesh> <primitive>    Print outlined vertex index pairs
  cube <out.gltf>                         Write a sample cube asset
  init-config [path]                      Write the current config as YAML

Flags:
  -config <path>   Config file (default: ./outline.yaml or user config dir)
  -mode <mode>     on, off or model (honor thresholds stored in the asset)
  -angle <rad>     Minimum angle between face normals in (0, pi), overrides
                   everything; 0 means no override
  -debug           Enable debug logging
  -log <path>      Also log to a rotating file
  -overwrite       Allow replacing existing output files

Examples:
  outlinetool info model.gltf
  outlinetool -angle 0.3 generate model.gltf model-outlined.glb
  outlinetool edges model.gltf 0 0`)
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: outlinetool info <file.gltf>")
	}

	doc, err := gltfasset.Open(args[0])
	if err != nil {
		return err
	}
	g := doc.GLTF()

	fmt.Printf("Asset:        %s\n", args[0])
	fmt.Printf("Meshes:       %d\n", doc.MeshCount())
	fmt.Printf("Accessors:    %d\n", len(g.Accessors))
	fmt.Printf("Buffers:      %d\n", len(g.Buffers))
	fmt.Printf("Compressed:   %v\n", doc.Compressed())
	fmt.Printf("Extensions:   %s\n", strings.Join(doc.ExtensionsUsed(), ", "))
	fmt.Println()

	for m := 0; m < doc.MeshCount(); m++ {
		fmt.Printf("Mesh %d %q\n", m, g.Meshes[m].Name)
		for p := 0; p < doc.PrimitiveCount(m); p++ {
			prim := doc.Primitive(m, p)
			var attrs []string
			for name := range prim.Attributes {
				attrs = append(attrs, name)
			}
			sort.Strings(attrs)
			state := "none"
			if id, ok := outline.OutlineAccessor(doc, m, p); ok {
				state = fmt.Sprintf("accessor %d", id)
			}
			if hint, ok := outline.StoredThreshold(doc, m, p); ok {
				state += fmt.Sprintf(", stored threshold %.4f", hint)
			}
			fmt.Printf("  primitive %d: indexed=%v attributes=[%s] outline=%s\n",
				p, prim.Indices != nil, strings.Join(attrs, " "), state)
		}
	}
	return nil
}

func cmdGenerate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	binary := fs.Bool("glb", cfg.Output.Binary, "Write binary glTF when the output has no extension")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: outlinetool generate <in.gltf> <out.gltf>")
	}

	in, out := fs.Arg(0), fs.Arg(1)
	if filepath.Ext(out) == "" {
		if *binary {
			out += ".glb"
		} else {
			out += ".gltf"
		}
	}
	if !cfg.Output.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s exists (use -overwrite)", out)
		}
	}

	m := assets.NewManager(logger.Named("assets"), cfg.GeneratorOptions()...)
	defer m.Close()

	a, err := m.Load(in)
	if err != nil {
		return err
	}
	if !a.Outlined {
		fmt.Println("No outline produced; writing asset unchanged.")
	}
	for _, r := range a.Report.Results {
		fmt.Printf("mesh %d primitive %d: %d edges (threshold %.4f rad)\n",
			r.Mesh, r.Primitive, len(r.Edges), r.Threshold)
	}

	if err := a.Doc.Save(out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}

func cmdEdges(cfg *config.Config, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: outlinetool edges <file.gltf> <mesh> <primitive>")
	}
	mesh, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid mesh index: %w", err)
	}
	prim, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid primitive index: %w", err)
	}

	doc, err := gltfasset.Open(args[0])
	if err != nil {
		return err
	}

	opts := append(cfg.GeneratorOptions(), outline.WithLogger(logger.Named("outline")))
	gen := outline.NewGenerator(opts...)
	res, ok := gen.OutlinePrimitive(doc, gltfasset.NewResources(doc), mesh, prim)
	if !ok {
		fmt.Println("No outline edges.")
		return nil
	}

	for _, e := range res.Edges {
		fmt.Printf("%d %d\n", e.Start, e.End)
	}
	logger.Debug("edges listed", zap.Int("count", len(res.Edges)))
	return nil
}

func cmdCube(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: outlinetool cube <out.gltf>")
	}
	if !cfg.Output.Overwrite {
		if _, err := os.Stat(args[0]); err == nil {
			return fmt.Errorf("%s exists (use -overwrite)", args[0])
		}
	}

	doc := gltfasset.New(nil)
	doc.AddPrimitive(0, gltfasset.Cube())
	if err := doc.Save(args[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", args[0])
	return nil
}

func cmdInitConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), config.FileName))
	return nil
}
