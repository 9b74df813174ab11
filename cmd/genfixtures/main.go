// Command genfixtures writes a small self-consistent trio of source
// fixtures for local end-to-end runs: a TopoJSON topology, a language
// CSV, and a population CSV. It uses the actual domain package to
// ingest what it wrote, so the fixture is guaranteed to load.
//
// Usage:
//
//	go run ./cmd/genfixtures -dir data/fixtures
//	go run ./cmd/genfixtures -dir data/fixtures -serve :9090
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mapfolk/language-atlas/internal/domain"
)

// topology covers four states and one territory so the loader exercises
// FIPS resolution, property-name fallback, and the skip path for
// non-state features.
const topology = `{
  "type": "Topology",
  "objects": {
    "states": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "id": 6, "arcs": [[0]], "properties": {"name": "California"}},
        {"type": "Polygon", "id": 48, "arcs": [[1]], "properties": {"name": "Texas"}},
        {"type": "Polygon", "id": 36, "arcs": [[2]], "properties": {"name": "New York"}},
        {"type": "Polygon", "id": "02", "arcs": [[3]], "properties": {"name": "Alaska"}},
        {"type": "Polygon", "id": 72, "arcs": [[4]], "properties": {"name": "Puerto Rico"}}
      ]
    }
  },
  "arcs": [
    [[0, 0], [0, 9999], [9999, 0], [0, -9999], [-9999, 0]],
    [[2000, 0], [0, 9999], [9999, 0], [0, -9999], [-9999, 0]],
    [[4000, 0], [0, 9999], [9999, 0], [0, -9999], [-9999, 0]],
    [[6000, 0], [0, 9999], [9999, 0], [0, -9999], [-9999, 0]],
    [[8000, 0], [0, 9999], [9999, 0], [0, -9999], [-9999, 0]]
  ],
  "transform": {"scale": [0.004, 0.002], "translate": [-124.7, 25.1]}
}
`

// languageRows deliberately mixes the messy value forms the parser
// accepts: thousands separators, ranges, "<N" floors, and null markers.
var languageRows = [][]string{
	{"State", "Language", "Speakers", `Speak English less than "Very Well"`, "Margin of Error"},
	{"CA", "Spanish", "10,034,351", "4,500,000", "12,000"},
	{"CA", "English", "25,000,000", "", "30,000"},
	{"california", "Tagalog", "796,451", "270,000", "8,000"},
	{"CA", "Basque", "<1,000", "250", "150"},
	{"TX", "Spanish", "7,029,595", "3,100,000", "10,000"},
	{"Texas", "Vietnamese", "190,000-200,000", "120,000", "4,500"},
	{"NY", "Spanish", "2,758,925", "1,200,000", "9,000"},
	{"New York (state)", "Chinese", "419,000", "250,000", "6,000"},
	{"AK", "Yupik", "18,626", "5,000", "900"},
	{"AK", "Spanish", "N/A", "", ""},
}

var populationRows = [][]string{
	{"State", "2010"},
	{"California", "37,253,956"},
	{"Texas", "25,145,561"},
	{"New York", "19,378,102"},
	{"Alaska", "710,231"},
	{"United States", "308,745,538"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("dir", "", "output directory for the fixture files")
	serve := flag.String("serve", "", "optional address to serve the directory on after writing")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -dir")
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	topoPath := filepath.Join(*dir, "states-topo.json")
	if err := os.WriteFile(topoPath, []byte(topology), 0o644); err != nil {
		return fmt.Errorf("write topology: %w", err)
	}
	log.Printf("wrote %s", topoPath)

	langPath := filepath.Join(*dir, "languages.csv")
	if err := writeCSV(langPath, languageRows); err != nil {
		return fmt.Errorf("write language csv: %w", err)
	}
	log.Printf("wrote %s", langPath)

	popPath := filepath.Join(*dir, "population.csv")
	if err := writeCSV(popPath, populationRows); err != nil {
		return fmt.Errorf("write population csv: %w", err)
	}
	log.Printf("wrote %s", popPath)

	if err := verify(); err != nil {
		return fmt.Errorf("fixture verification: %w", err)
	}

	if *serve != "" {
		log.Printf("serving %s on %s", *dir, *serve)
		log.Printf("  GEOMETRY_URL=http://localhost%s/states-topo.json", *serve)
		log.Printf("  LANGUAGE_URL=http://localhost%s/languages.csv", *serve)
		log.Printf("  POPULATION_URL=http://localhost%s/population.csv", *serve)
		return http.ListenAndServe(*serve, http.FileServer(http.Dir(*dir)))
	}
	return nil
}

// verify ingests the in-memory fixture tables through the domain package
// and prints a short summary, catching fixture drift before anything
// downstream loads it.
func verify() error {
	records, err := domain.RecordsFromTable(languageRows)
	if err != nil {
		return err
	}
	population, err := domain.PopulationFromTable(populationRows)
	if err != nil {
		return err
	}
	snap := domain.NewSnapshot(records, population, nil)

	// Every optional column in the fixture must survive ingestion; a header
	// that matches no alias drops its whole column silently.
	var english int
	for _, rec := range records {
		if rec.EnglishLessThanWell != nil {
			english++
		}
	}
	if english == 0 {
		return fmt.Errorf("English-proficiency column dropped: header matches no alias")
	}

	log.Printf("fixture: %d language records across %d states, %d population rows",
		len(records), len(snap.LanguageByState), len(population))

	nationwide := domain.NationwideSummary(snap)
	if nationwide.EnglishLessThanWell <= 0 {
		return fmt.Errorf("English-proficiency totals are zero despite fixture values")
	}
	log.Printf("fixture: %d distinct languages nationwide, top language %q",
		nationwide.DistinctLanguages, nationwide.Languages[0].Language)
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
