// Command mapgen generates a tile map from a YAML ruleset using the
// WFC solver and renders it as ASCII, optionally persisting it to the
// map store.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/gridkit/internal/mapstore"
	"github.com/lawnchairsociety/gridkit/internal/wfc"
)

// Ruleset is the YAML description of patterns and their adjacency.
type Ruleset struct {
	Name     string    `yaml:"name"`
	Patterns []Pattern `yaml:"patterns"`
}

// Pattern describes one tile pattern.
type Pattern struct {
	Name     string   `yaml:"name"`
	Glyph    string   `yaml:"glyph"`
	Weight   float64  `yaml:"weight"`
	Adjacent []string `yaml:"adjacent"`
}

func main() {
	rulesetFile := flag.String("ruleset", "data/ruleset.yaml", "Path to ruleset YAML file")
	width := flag.Int("width", 24, "Map width in tiles")
	height := flag.Int("height", 16, "Map height in tiles")
	seed := flag.Int64("seed", 0, "Generation seed (0 picks 1)")
	retries := flag.Int("retries", 50, "Maximum solve attempts")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	dbFile := flag.String("db", "", "SQLite map store path (empty to skip persistence)")
	flag.Parse()

	ruleset, err := loadRuleset(*rulesetFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ruleset: %v\n", err)
		os.Exit(1)
	}

	table, weights, err := compile(ruleset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling ruleset: %v\n", err)
		os.Exit(1)
	}

	baseSeed := *seed
	if baseSeed == 0 {
		baseSeed = 1
	}

	cfg := wfc.DefaultGenerateConfig(*width, *height, baseSeed)
	cfg.NumPatterns = len(ruleset.Patterns)
	cfg.Table = table
	cfg.Weights = weights
	cfg.MaxRetries = *retries

	result, err := wfc.NewGenerator(cfg).Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
		os.Exit(1)
	}

	var output strings.Builder
	render(&output, ruleset, result)
	if *showLegend {
		renderLegend(&output, ruleset)
	}

	if *dbFile != "" {
		id, err := persist(*dbFile, ruleset.Name, cfg.NumPatterns, result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving map: %v\n", err)
			os.Exit(1)
		}
		output.WriteString(fmt.Sprintf("\nSaved as %s\n", id))
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}

func loadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ruleset Ruleset
	if err := yaml.Unmarshal(data, &ruleset); err != nil {
		return nil, err
	}
	if len(ruleset.Patterns) == 0 {
		return nil, fmt.Errorf("ruleset has no patterns")
	}
	return &ruleset, nil
}

// compile resolves pattern names to indices and builds the
// propagation table and weight vector.
func compile(ruleset *Ruleset) (*wfc.PropagationTable, []float64, error) {
	indexes := make(map[string]int, len(ruleset.Patterns))
	for i, p := range ruleset.Patterns {
		if _, exists := indexes[p.Name]; exists {
			return nil, nil, fmt.Errorf("duplicate pattern name %q", p.Name)
		}
		indexes[p.Name] = i
	}

	rules := wfc.AdjacencyRules{}
	weights := make([]float64, len(ruleset.Patterns))
	for i, p := range ruleset.Patterns {
		weights[i] = p.Weight
		for _, name := range p.Adjacent {
			j, ok := indexes[name]
			if !ok {
				return nil, nil, fmt.Errorf("pattern %q allows unknown neighbor %q", p.Name, name)
			}
			rules[i] = append(rules[i], j)
		}
	}

	table, err := wfc.NewPropagationTable(len(ruleset.Patterns), rules)
	if err != nil {
		return nil, nil, err
	}
	return table, weights, nil
}

func render(output *strings.Builder, ruleset *Ruleset, result *wfc.GeneratedMap) {
	title := ruleset.Name
	if title == "" {
		title = "map"
	}
	output.WriteString(fmt.Sprintf("%s %dx%d (seed %d, %d attempt(s))\n",
		title, result.Width, result.Height, result.Seed, result.Attempts))
	output.WriteString(strings.Repeat("-", 40) + "\n")

	for y := 0; y < result.Height; y++ {
		for x := 0; x < result.Width; x++ {
			output.WriteString(glyph(ruleset, result.Cells[y*result.Width+x]))
		}
		output.WriteString("\n")
	}
}

func renderLegend(output *strings.Builder, ruleset *Ruleset) {
	output.WriteString("\nLegend:\n")
	for i, p := range ruleset.Patterns {
		output.WriteString(fmt.Sprintf("  %s  %s (weight %g)\n", glyph(ruleset, uint8(i)), p.Name, p.Weight))
	}
}

func glyph(ruleset *Ruleset, pattern uint8) string {
	if int(pattern) < len(ruleset.Patterns) && ruleset.Patterns[pattern].Glyph != "" {
		return ruleset.Patterns[pattern].Glyph
	}
	return "?"
}

func persist(dbFile, name string, numPatterns int, result *wfc.GeneratedMap) (string, error) {
	store, err := mapstore.Open(mapstore.DialectSQLite, dbFile)
	if err != nil {
		return "", err
	}
	defer store.Close()

	m := &mapstore.StoredMap{
		Name:        name,
		Width:       result.Width,
		Height:      result.Height,
		NumPatterns: numPatterns,
		Seed:        result.Seed,
		Cells:       result.Cells,
	}
	if err := store.SaveMap(m); err != nil {
		return "", err
	}
	return m.ID, nil
}
