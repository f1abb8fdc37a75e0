package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gwl-atlas/county-climate-tiles/services/seeder/internal/atlas"
	"github.com/gwl-atlas/county-climate-tiles/services/seeder/internal/config"
	"github.com/gwl-atlas/county-climate-tiles/services/seeder/internal/db"
)

// gwlFile pairs one atlas GeoJSON export with its warming level.
type gwlFile struct {
	GWL  float64
	Path string
}

type gwlFileList []gwlFile

func (l *gwlFileList) String() string {
	parts := make([]string, 0, len(*l))
	for _, f := range *l {
		parts = append(parts, fmt.Sprintf("%.1f=%s", f.GWL, f.Path))
	}
	return strings.Join(parts, ",")
}

func (l *gwlFileList) Set(value string) error {
	gwlStr, path, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected GWL=FILE, got %q", value)
	}
	gwl, err := strconv.ParseFloat(gwlStr, 64)
	if err != nil {
		return fmt.Errorf("invalid GWL %q: %w", gwlStr, err)
	}
	*l = append(*l, gwlFile{GWL: gwl, Path: path})
	return nil
}

func main() {
	var files gwlFileList
	initSchema := flag.Bool("init", false, "apply the schema before seeding")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Var(&files, "gwl", "GWL=FILE pair, repeatable (e.g. -gwl 2.0=counties_gwl2.geojson)")
	flag.Parse()

	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(files, *initSchema, *dryRun); err != nil {
		log.Fatalf("seeder failed: %v", err)
	}
}

func run(files gwlFileList, initSchema, dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// County identity and geometry come from the first export; every
	// export carries the same county set.
	first, err := os.ReadFile(files[0].Path)
	if err != nil {
		return err
	}
	fc, err := atlas.ParseCollection(first)
	if err != nil {
		return fmt.Errorf("parse %s: %w", files[0].Path, err)
	}
	counties, err := atlas.CountyRows(fc)
	if err != nil {
		return fmt.Errorf("parse %s: %w", files[0].Path, err)
	}
	log.Printf("parsed %d counties from %s", len(counties), files[0].Path)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if initSchema {
		if dryRun {
			log.Printf("dry-run: skipping schema init")
		} else if err := db.InitSchema(ctx, pool); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	if dryRun {
		log.Printf("dry-run: skipping county upsert (%d candidates)", len(counties))
	}

	var fipsToID map[string]int64
	if !dryRun {
		fipsToID, err = db.UpsertCounties(ctx, pool, counties)
		if err != nil {
			return fmt.Errorf("upsert counties: %w", err)
		}
		log.Printf("upserted %d counties", len(fipsToID))
	}

	for i, file := range files {
		collection := fc
		if i > 0 {
			data, err := os.ReadFile(file.Path)
			if err != nil {
				return err
			}
			collection, err = atlas.ParseCollection(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", file.Path, err)
			}
		}

		candidates := atlas.MetricCandidates(collection, file.GWL)
		if dryRun {
			log.Printf("dry-run: would seed %d metric rows for GWL %.1f from %s", len(candidates), file.GWL, file.Path)
			continue
		}

		rows, dropped := atlas.Resolve(candidates, fipsToID)
		if dropped > 0 {
			log.Printf("warning: %d features in %s reference unknown FIPS codes", dropped, file.Path)
		}

		if err := db.UpsertMetrics(ctx, pool, rows); err != nil {
			return fmt.Errorf("upsert metrics for GWL %.1f: %w", file.GWL, err)
		}
		log.Printf("seeded %d metric rows for GWL %.1f", len(rows), file.GWL)
	}

	return nil
}
