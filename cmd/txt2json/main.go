// txt2json compiles a human-authored ASCII map into the world
// descriptor JSON consumed by deployment and the scenario driver.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"thistoken/indexer/config"
	"thistoken/indexer/mapgen"
)

func main() {
	input := flag.String("input", "simple8.txt", "Path to ASCII map (.txt)")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	latest := flag.String("latest", "latest.json", "Also write the descriptor here (empty to skip)")
	flag.Parse()

	f, err := os.Open(*input)
	must(err)
	defer f.Close()

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	name := strings.TrimSuffix(filepath.Base(*input), ".txt")

	compiler := mapgen.NewCompiler(config.Teams(), rand.New(rand.NewSource(s)))
	world, err := compiler.Compile(name, f)
	must(err)

	out, err := json.Marshal(world)
	must(err)

	target := strings.TrimSuffix(*input, ".txt") + ".json"
	must(os.WriteFile(target, out, 0o644))
	if *latest != "" {
		must(os.WriteFile(*latest, out, 0o644))
	}

	fmt.Printf("%s: %dx%d, %d cities\n", world.Name, world.Width, world.Height, len(world.Cities))
	fmt.Printf("%d actions queued\n", len(world.Queue))
	fmt.Println("files:")
	fmt.Println("  ", target)
	if *latest != "" {
		fmt.Println("  ", *latest)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
