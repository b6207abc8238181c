package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedMigrationsPaired(t *testing.T) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migration files")
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file %q", name)
		}
	}

	for base := range ups {
		if !downs[base] {
			t.Errorf("migration %q has no down file", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("migration %q has no up file", base)
		}
	}
}

func TestInitialMigrationCreatesCoreTables(t *testing.T) {
	data, err := migrationFiles.ReadFile("sql/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read initial migration: %v", err)
	}
	ddl := string(data)

	for _, table := range []string{
		"landscape.projects",
		"landscape.parcels",
		"landscape.leases",
		"landscape.unit_cost_benchmarks",
		"landscape.growth_rate_sets",
		"landscape.growth_rate_steps",
		"landscape.benchmark_suggestions",
		"landscape.opex_entries",
		"landscape.market_comps",
		"landscape.cost_templates",
		"landscape.cost_template_lines",
		"landscape.project_budget_lines",
		"landscape.documents",
		"landscape.document_extractions",
	} {
		if !strings.Contains(ddl, "CREATE TABLE "+table) {
			t.Errorf("initial migration missing table %s", table)
		}
	}

	if !strings.Contains(ddl, "UNIQUE (project_id, field_key)") {
		t.Error("opex_entries missing upsert key")
	}
}
