// mcfnc - compiles .mcfn sources into a datapack function tree
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/BASTOIN/MCFN-COMPILER/cache"
	"github.com/BASTOIN/MCFN-COMPILER/compiler"
	"github.com/BASTOIN/MCFN-COMPILER/compiler/hash"
	"github.com/BASTOIN/MCFN-COMPILER/datapack"
	"github.com/BASTOIN/MCFN-COMPILER/manifest"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	ns := flag.String("ns", "", "Pack namespace (overrides mcfn.toml)")
	out := flag.String("out", "", "Output root directory (overrides mcfn.toml)")
	force := flag.Bool("f", false, "Rewrite artifacts even when the build cache says nothing changed")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mcfnc [options] [path]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles .mcfn sources from path (a file or a directory) into a\n")
		fmt.Fprintf(os.Stderr, "datapack function tree. With no path, an mcfn.toml found in or above\n")
		fmt.Fprintf(os.Stderr, "the working directory drives the build.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mcfnc game.mcfn --ns arena --out dist\n")
		fmt.Fprintf(os.Stderr, "  mcfnc ./src --ns arena --out dist\n")
		fmt.Fprintf(os.Stderr, "  mcfnc                  # build from mcfn.toml\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
	log := commonlog.GetLogger("mcfnc")

	if err := run(flag.Arg(0), *ns, *out, *force, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(input, ns, out string, force bool, log commonlog.Logger) error {
	var projectDir string

	if input == "" || ns == "" || out == "" {
		m, err := manifest.FindAndLoad(".")
		if err != nil {
			return err
		}
		if m != nil {
			projectDir = m.Dir
			if ns == "" {
				ns = m.Project.Namespace
			}
			if out == "" {
				out = m.OutputRoot()
			}
			if input == "" {
				return buildDirs(m.SourceDirPaths(), ns, out, projectDir, m.DefinesPath(), force, log)
			}
		}
	}

	if input == "" {
		return errors.New("no input path and no mcfn.toml found")
	}
	if ns == "" {
		return errors.New("--ns is required without an mcfn.toml")
	}
	if out == "" {
		out = "dist"
	}
	return buildDirs([]string{input}, ns, out, projectDir, "", force, log)
}

// buildDirs compiles every input root into one artifact tree. All roots share
// one namespace, one define scope and one suspension dispatcher.
func buildDirs(inputs []string, ns, out, projectDir, definesDir string, force bool, log commonlog.Logger) error {
	if err := manifest.ValidateNamespace(ns); err != nil {
		return err
	}

	res, err := compiler.CompileAll(inputs, ns, definesDir)
	if err != nil {
		return err
	}
	output := res.Output

	var srcTexts []string
	for _, src := range res.Sources {
		b, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		srcTexts = append(srcTexts, string(b))
	}

	srcHash := hash.Hex(hash.HashSource(strings.Join(srcTexts, "\x00")))
	outHash := hash.Hex(hash.HashOutput(output))
	log.Infof("compiled %d sources into %d units", len(res.Sources), len(output.Units))

	if projectDir != "" {
		c, err := cache.OpenDefault(projectDir)
		if err != nil {
			log.Warningf("build cache unavailable: %v", err)
		} else {
			defer c.Close()
			if !force {
				if rec, err := c.Latest(srcHash, ns); err == nil && rec.OutputHash == outHash {
					if _, statErr := os.Stat(out); statErr == nil {
						log.Infof("artifacts up to date (run %s)", rec.RunID)
						fmt.Printf("Up to date: %s\n", out)
						return nil
					}
				}
			}
			defer func() {
				if runID, err := c.RecordBuild(srcHash, outHash, ns); err != nil {
					log.Warningf("recording build: %v", err)
				} else {
					log.Infof("recorded build %s", runID)
				}
			}()
		}
	}

	if err := datapack.Write(out, output); err != nil {
		return err
	}
	fmt.Printf("Wrote %d function files under %s\n", len(output.Units), out)
	return nil
}
