// Command shaderpack bundles compiled SPIR-V shaders into a single
// compressed archive the renderer can load at startup.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Ceichert31/VulkanRenderer/asset"
)

var (
	inputDir = flag.String("in", "./shaders", "directory scanned for compiled .spv shaders")
	output   = flag.String("out", "shaders.spk", "bundle file to write")
	version  = flag.Int64("version", 1, "bundle version stamp")
)

// stageOf maps the file naming convention onto a bundle stage. Shader
// files are named <shader>.<stage>.spv, anything else is skipped.
func stageOf(name string) (asset.Stage, bool) {
	trimmed := strings.TrimSuffix(name, ".spv")
	nodes := strings.Split(trimmed, ".")
	if len(nodes) != 2 {
		return 0, false
	}
	switch nodes[1] {
	case "vert":
		return asset.StageVertex, true
	case "frag":
		return asset.StageFragment, true
	}
	return 0, false
}

func main() {
	flag.Parse()

	builder := asset.NewBuilder(*version)

	var packed int
	err := filepath.Walk(*inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".spv") {
			return nil
		}

		stage, ok := stageOf(info.Name())
		if !ok {
			log.Warnf("Skipping %s: unrecognised stage", info.Name())
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := builder.Add(info.Name(), stage, data); err != nil {
			return err
		}

		log.Infof("Packed %s (%d bytes)", info.Name(), len(data))
		packed++
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
	if packed == 0 {
		log.Fatalf("No shaders found in %s", *inputDir)
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	written, err := builder.WriteTo(file)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Wrote %s: %d shaders, %d bytes", *output, packed, written)
}
