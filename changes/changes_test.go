// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"exbuild/internal/changeset"
	"exbuild/internal/config"
)

func testEnv(t *testing.T) *changeset.Environment {
	t.Helper()
	root := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.BuildDir = filepath.Join(root, "build")
	cfg.DatasetDir = filepath.Join(root, "dataset")
	if err := os.MkdirAll(cfg.BuildDir, 0o755); err != nil {
		t.Fatal(err)
	}

	env := changeset.NewEnvironment(cfg, log.New(io.Discard))
	return env
}

// resolve runs the setenv unit the way a real build would, so later
// units see the derived paths.
func resolve(t *testing.T, env *changeset.Environment) {
	t.Helper()
	if err := setenv(context.Background(), env, env.Log, nil); err != nil {
		t.Fatal(err)
	}
}

func TestRegisteredUnits(t *testing.T) {
	for _, id := range []string{
		"setenv", "dataset_copy", "initial_ids", "rename_ids",
		"regenerate_model", "validate_dataset", "load_collection",
	} {
		if !changeset.IsRegistered(id) {
			t.Errorf("unit %q not registered", id)
		}
	}
}

func TestSetenv(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)

	want := filepath.Join(env.BuildDir, env.Config.ExercisesSubdir)
	if env.ExercisesDir != want {
		t.Errorf("ExercisesDir = %q, want %q", env.ExercisesDir, want)
	}
}

func seedDataset(t *testing.T, env *changeset.Environment) {
	t.Helper()
	exc := filepath.Join(env.DatasetDir, "exercises")

	// paired document + image dir
	if err := os.MkdirAll(filepath.Join(exc, "Bench-Press"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(exc, "Bench-Press", "0.jpg"), "img")
	writeTestFile(t, filepath.Join(exc, "Bench-Press.json"), `{"id": "Bench-Press", "name": "Bench Press"}`)

	// document without an image dir
	writeTestFile(t, filepath.Join(exc, "plank.json"), `{"id": "plank", "name": "Plank"}`)

	// image dir without a document
	if err := os.MkdirAll(filepath.Join(exc, "orphan"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDatasetCopy(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)
	seedDataset(t, env)

	if err := datasetCopy(context.Background(), env, env.Log, nil); err != nil {
		t.Fatalf("datasetCopy() error = %v", err)
	}

	doc := filepath.Join(env.ExercisesDir, "Bench-Press", env.Config.ExerciseJSON)
	raw, err := os.ReadFile(doc)
	if err != nil {
		t.Fatalf("document not packed: %v", err)
	}
	if !strings.Contains(string(raw), "Bench Press") {
		t.Errorf("document content wrong: %s", raw)
	}
	if _, err := os.Stat(filepath.Join(env.ExercisesDir, "Bench-Press", "0.jpg")); err != nil {
		t.Error("image not copied alongside document")
	}
	if _, err := os.Stat(filepath.Join(env.ExercisesDir, "plank", env.Config.ExerciseJSON)); err != nil {
		t.Error("dirless document should still get its own dir")
	}
	if _, err := os.Stat(filepath.Join(env.ExercisesDir, "orphan")); !os.IsNotExist(err) {
		t.Error("orphan dir without document must not be packed")
	}
}

func TestDatasetCopy_SkipsExisting(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)
	seedDataset(t, env)

	if err := os.MkdirAll(env.ExercisesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := datasetCopy(context.Background(), env, env.Log, nil); err != nil {
		t.Fatalf("datasetCopy() on existing dir error = %v", err)
	}
	// skipped: nothing packed
	entries, err := os.ReadDir(env.ExercisesDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("skip run packed %d entries", len(entries))
	}
}

func TestDatasetCopy_MissingDataset(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)

	if err := datasetCopy(context.Background(), env, env.Log, nil); err == nil {
		t.Error("datasetCopy() should fail without a dataset checkout")
	}
}

func TestInitialIDs(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)

	for _, dir := range []string{"Bench-Press", "3_4-Sit--Up", "plank"} {
		if err := os.MkdirAll(filepath.Join(env.ExercisesDir, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	if err := initialIDs(context.Background(), env, env.Log, nil); err != nil {
		t.Fatalf("initialIDs() error = %v", err)
	}

	for _, want := range []string{"bench_press", "3_4_sit_up", "plank"} {
		if _, err := os.Stat(filepath.Join(env.ExercisesDir, want)); err != nil {
			t.Errorf("expected dir %q after rename: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.ExercisesDir, "Bench-Press")); !os.IsNotExist(err) {
		t.Error("old dir name should be gone")
	}
}

func TestInitialIDs_AllClean(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)
	if err := os.MkdirAll(filepath.Join(env.ExercisesDir, "squat"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := initialIDs(context.Background(), env, env.Log, nil); err != nil {
		t.Fatalf("initialIDs() on clean ids error = %v", err)
	}
}

func TestRenameIDs_ReportsLeftovers(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)
	// fixup can't repair a dot
	if err := os.MkdirAll(filepath.Join(env.ExercisesDir, "weird.name"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := renameIDs(context.Background(), env, env.Log, nil); err != nil {
		t.Fatalf("renameIDs() error = %v", err)
	}
}

func TestRegenerateModel(t *testing.T) {
	env := testEnv(t)
	root := filepath.Dir(env.BuildDir)

	schema := filepath.Join(root, "schema.json")
	writeTestFile(t, schema, `{
		"type": "object",
		"properties": {"id": {"type": "string"}, "name": {"type": "string"}},
		"required": ["id", "name"]
	}`)
	env.Config.ModelGen.SchemaFile = schema
	env.Config.ModelGen.ModelFile = filepath.Join(root, "document.go")

	if err := regenerateModel(context.Background(), env, env.Log, map[string]any{
		"package": "model", "type_name": "Document",
	}); err != nil {
		t.Fatalf("regenerateModel() error = %v", err)
	}

	raw, err := os.ReadFile(env.Config.ModelGen.ModelFile)
	if err != nil {
		t.Fatalf("model not written: %v", err)
	}
	src := string(raw)
	if !strings.Contains(src, "// updated-at: ") {
		t.Error("generated model missing updated-at header")
	}
	if !strings.Contains(src, "type Document struct {") {
		t.Errorf("generated model wrong:\n%s", src)
	}

	// second run: no regeneration
	if err := regenerateModel(context.Background(), env, env.Log, nil); err != nil {
		t.Fatalf("second regenerateModel() error = %v", err)
	}
}

func TestValidateDataset(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)
	root := filepath.Dir(env.BuildDir)

	schema := filepath.Join(root, "schema.json")
	writeTestFile(t, schema, `{
		"type": "object",
		"properties": {"id": {"type": "string"}, "name": {"type": "string"}},
		"required": ["id", "name"]
	}`)
	env.Config.ModelGen.SchemaFile = schema

	good := filepath.Join(env.ExercisesDir, "squat")
	if err := os.MkdirAll(good, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(good, env.Config.ExerciseJSON), `{"id": "squat", "name": "Squat"}`)

	if err := validateDataset(context.Background(), env, env.Log, nil); err != nil {
		t.Fatalf("validateDataset() on clean data error = %v", err)
	}

	bad := filepath.Join(env.ExercisesDir, "broken")
	if err := os.MkdirAll(bad, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(bad, env.Config.ExerciseJSON), `{"id": "broken"}`)

	err := validateDataset(context.Background(), env, env.Log, nil)
	if err == nil || !strings.Contains(err.Error(), "violate the dataset schema") {
		t.Errorf("validateDataset() error = %v, want schema violation summary", err)
	}
}

func TestLoadCollection(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)

	for id, name := range map[string]string{"squat": "Squat", "plank": "Plank"} {
		dir := filepath.Join(env.ExercisesDir, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		writeTestFile(t, filepath.Join(dir, env.Config.ExerciseJSON),
			`{"id": "`+id+`", "name": "`+name+`"}`)
	}

	if err := loadCollection(context.Background(), env, env.Log, nil); err != nil {
		t.Fatalf("loadCollection() error = %v", err)
	}
	if env.Collection == nil || env.Collection.Len() != 2 {
		t.Fatalf("Collection = %v", env.Collection)
	}
	ex, ok := env.Collection.Get("squat")
	if !ok || ex.Name != "Squat" {
		t.Errorf("Get(squat) = %+v, %v", ex, ok)
	}
}

func TestLoadCollection_BadDocument(t *testing.T) {
	env := testEnv(t)
	resolve(t, env)

	dir := filepath.Join(env.ExercisesDir, "broken")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(dir, env.Config.ExerciseJSON), "{not json")

	if err := loadCollection(context.Background(), env, env.Log, nil); err == nil {
		t.Error("loadCollection() should surface malformed documents")
	}
}
