package wikidata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterExport = `[
  {
    "id": "Q1",
    "name": "cure_Q1",
    "def": "restore to health",
    "pb": "cure.01",
    "parents": ["remedy_Q9"],
    "roles": {
      "A0-agent": [["doctor_Q1234"], ["None"]],
      "A1-patient": [["+person_Q5"]]
    }
  },
  {
    "id": "Q2",
    "name": "treatment_Q2",
    "def": "medical care",
    "pb": "cure.01",
    "parents": ["cure_Q1"],
    "roles": {}
  }
]`

const overlayExportJSON = `{
  "events": {
    "MedicalIntervention": [
      {
        "wd_node": "Q10",
        "name": "treat",
        "wd_description": "apply care",
        "arguments": [
          {"name": "A0_treat_healer", "constraints": [{"name": "person", "wd_node": "Q5"}]},
          {"name": "AM_loc_place", "constraints": []}
        ],
        "ldc_types": [
          {"pb_rolesets": ["treat.03", "cure_01"]}
        ]
      }
    ]
  }
}`

func writeResources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, masterRawFile), []byte(masterExport), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, overlayRawFile), []byte(overlayExportJSON), 0644))
	return dir
}

func TestLoadTables_GeneratesDerivedTables(t *testing.T) {
	dir := writeResources(t)

	tables, err := LoadTables(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, masterTableFile))
	assert.FileExists(t, filepath.Join(dir, overlayTableFile))

	require.Len(t, tables.Master["cure-01"], 2)
	first := tables.Master["cure-01"][0]
	assert.Equal(t, "Q1", first.Qnode)
	assert.Equal(t, "cure", first.Name)
	assert.Equal(t, "restore to health", first.Definition)

	agent := first.Args["A0"]
	require.NotNil(t, agent)
	assert.Equal(t, "agent", agent.TextRole)
	// The "None" constraint is dropped; the '+' prefix is stripped.
	require.Len(t, agent.Constraints, 1)
	assert.Equal(t, "doctor", agent.Constraints[0].Name)
	assert.Equal(t, "Q1234", agent.Constraints[0].WdNode)
	patient := first.Args["A1"]
	require.NotNil(t, patient)
	assert.Equal(t, "person", patient.Constraints[0].Name)

	// Parent ids are stripped from their "name_Qid" form.
	assert.Equal(t, []string{"Q9"}, tables.parents["Q1"])
	assert.Equal(t, []string{"Q1"}, tables.parents["Q2"])
}

func TestGenerateOverlayTable(t *testing.T) {
	dir := writeResources(t)

	tables, err := LoadTables(dir)
	require.NoError(t, err)

	// Both roleset spellings map to the same candidate.
	require.Len(t, tables.Overlay["treat-03"], 1)
	require.Len(t, tables.Overlay["cure-01"], 1)
	assert.Equal(t, tables.Overlay["treat-03"][0].Qnode, tables.Overlay["cure-01"][0].Qnode)

	cand := tables.Overlay["treat-03"][0]
	assert.Equal(t, "Q10", cand.Qnode)
	assert.Equal(t, "treat", cand.Name)

	healer := cand.Args["A0"]
	require.NotNil(t, healer)
	assert.Equal(t, "healer", healer.TextRole)
	// "AM_loc_place" keys off its second segment.
	place := cand.Args["loc"]
	require.NotNil(t, place)
	assert.Equal(t, "place", place.TextRole)
}

func TestLoadTables_UsesExistingDerivedTables(t *testing.T) {
	dir := writeResources(t)
	_, err := LoadTables(dir)
	require.NoError(t, err)

	// Replace the derived master table; LoadTables must not regenerate it.
	custom := `{"made-up-01": [{"qnode": "Q99", "name": "made up", "definition": "", "args": {}}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, masterTableFile), []byte(custom), 0644))

	tables, err := LoadTables(dir)
	require.NoError(t, err)
	require.Len(t, tables.Master["made-up-01"], 1)
	assert.Equal(t, "Q99", tables.Master["made-up-01"][0].Qnode)
}

func TestLoadTables_MissingRawExport(t *testing.T) {
	_, err := LoadTables(t.TempDir())
	require.Error(t, err)
}
