// Package wikidata resolves claim events and arguments to Wikidata Qnodes,
// using PropBank-to-Qnode tables derived from the DWD master export and
// overlay, and a candidate-lookup service for free-text arguments.
package wikidata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Derived table artifacts, generated next to the raw exports on first use.
const (
	masterRawFile    = "qe_master.json"
	overlayRawFile   = "xpo_dwd_overlay_v2.json"
	masterTableFile  = "pb_to_qnode_master.json"
	overlayTableFile = "pb_to_qnode_overlay.json"
)

// Constraint is a Qnode type constraint on an event argument.
type Constraint struct {
	Name   string `json:"name"`
	WdNode string `json:"wd_node"`
}

// ArgSpec describes one argument slot of an event Qnode.
type ArgSpec struct {
	Constraints []Constraint `json:"constraints"`
	TextRole    string       `json:"text_role"`
}

// Candidate is one Qnode candidate for a PropBank frame.
type Candidate struct {
	Qnode      string              `json:"qnode"`
	Name       string              `json:"name"`
	Definition string              `json:"definition"`
	Args       map[string]*ArgSpec `json:"args"`
}

// Table maps PropBank frame labels (hyphenated, e.g. "treat-03") to their
// Qnode candidates.
type Table map[string][]*Candidate

// Tables bundles the overlay and master candidate tables with the Qnode
// parent hierarchy from the master export.
type Tables struct {
	Overlay Table
	Master  Table

	// parents maps a Qnode id to the ids of its parent Qnodes.
	parents map[string][]string
}

// masterRecord is one entry of the raw DWD master export.
type masterRecord struct {
	ID      string                `json:"id"`
	Name    string                `json:"name"`
	Def     string                `json:"def"`
	PB      string                `json:"pb"`
	Parents []string              `json:"parents"`
	Roles   map[string][][]string `json:"roles"`
}

// overlayExport is the raw DWD overlay export.
type overlayExport struct {
	Events map[string][]overlayRecord `json:"events"`
}

type overlayRecord struct {
	WdNode        string        `json:"wd_node"`
	Name          string        `json:"name"`
	WdDescription string        `json:"wd_description"`
	Arguments     []overlayArg  `json:"arguments"`
	LDCTypes      []overlayType `json:"ldc_types"`
}

type overlayArg struct {
	Name        string       `json:"name"`
	Constraints []Constraint `json:"constraints"`
}

type overlayType struct {
	PBRolesets []string `json:"pb_rolesets"`
}

// LoadTables loads the derived PropBank-to-Qnode tables from resourceDir,
// generating them from the raw exports when missing.
func LoadTables(resourceDir string) (*Tables, error) {
	masterPath := filepath.Join(resourceDir, masterTableFile)
	if _, err := os.Stat(masterPath); os.IsNotExist(err) {
		if err := GenerateMasterTable(filepath.Join(resourceDir, masterRawFile), masterPath); err != nil {
			return nil, err
		}
	}
	overlayPath := filepath.Join(resourceDir, overlayTableFile)
	if _, err := os.Stat(overlayPath); os.IsNotExist(err) {
		if err := GenerateOverlayTable(filepath.Join(resourceDir, overlayRawFile), overlayPath); err != nil {
			return nil, err
		}
	}

	master, err := loadTable(masterPath)
	if err != nil {
		return nil, err
	}
	overlay, err := loadTable(overlayPath)
	if err != nil {
		return nil, err
	}
	parents, err := loadParents(filepath.Join(resourceDir, masterRawFile))
	if err != nil {
		return nil, err
	}
	return &Tables{Overlay: overlay, Master: master, parents: parents}, nil
}

func loadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read qnode table %s", path)
	}
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrapf(err, "unmarshal qnode table %s", path)
	}
	return table, nil
}

// loadParents reads the Qnode parent hierarchy from the raw master export.
func loadParents(rawPath string) (map[string][]string, error) {
	records, err := readMasterExport(rawPath)
	if err != nil {
		return nil, err
	}
	parents := make(map[string][]string, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		for _, parent := range rec.Parents {
			// Parent entries carry a "name_Qid" form; keep the id.
			segs := strings.Split(parent, "_")
			parents[rec.ID] = append(parents[rec.ID], segs[len(segs)-1])
		}
	}
	return parents, nil
}

func readMasterExport(rawPath string) ([]masterRecord, error) {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read master export %s", rawPath)
	}
	var records []masterRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "unmarshal master export %s", rawPath)
	}
	return records, nil
}

// GenerateMasterTable derives the PropBank-to-Qnode master table from the raw
// DWD master export.
func GenerateMasterTable(rawPath, outPath string) error {
	records, err := readMasterExport(rawPath)
	if err != nil {
		return err
	}

	table := make(Table)
	for _, rec := range records {
		args := make(map[string]*ArgSpec, len(rec.Roles))
		for role, constraints := range rec.Roles {
			var formatted []Constraint
			for _, constraint := range constraints {
				if len(constraint) == 0 {
					continue
				}
				raw := constraint[len(constraint)-1]
				if raw == "None" {
					continue
				}
				segs := strings.Split(raw, "_")
				name := strings.Join(segs[:len(segs)-1], "_")
				name = strings.ReplaceAll(name, "+", "")
				formatted = append(formatted, Constraint{Name: name, WdNode: segs[len(segs)-1]})
			}
			// Role keys carry a "A1-patient" form: slot, then text role.
			parts := strings.Split(role, "-")
			args[parts[0]] = &ArgSpec{
				Constraints: formatted,
				TextRole:    strings.Join(parts[1:], "-"),
			}
		}

		pb := strings.ReplaceAll(rec.PB, ".", "-")
		table[pb] = append(table[pb], &Candidate{
			Qnode:      rec.ID,
			Name:       strings.Split(rec.Name, "_Q")[0],
			Definition: rec.Def,
			Args:       args,
		})
	}
	return writeTable(table, outPath)
}

// GenerateOverlayTable derives the PropBank-to-Qnode overlay table from the
// raw DWD overlay export.
func GenerateOverlayTable(rawPath, outPath string) error {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return errors.Wrapf(err, "read overlay export %s", rawPath)
	}
	var export overlayExport
	if err := json.Unmarshal(data, &export); err != nil {
		return errors.Wrapf(err, "unmarshal overlay export %s", rawPath)
	}

	table := make(Table)
	for _, recs := range export.Events {
		for _, rec := range recs {
			args := make(map[string]*ArgSpec, len(rec.Arguments))
			for _, arg := range rec.Arguments {
				parts := strings.Split(arg.Name, "_")
				slot := parts[0]
				if (slot == "AM" || slot == "Ax" || slot == "mnr") && len(parts) > 1 {
					slot = parts[1]
				}
				if slot == "" {
					continue
				}
				textRole := ""
				if len(parts) > 2 {
					textRole = strings.Join(parts[2:], "-")
				}
				args[slot] = &ArgSpec{Constraints: arg.Constraints, TextRole: textRole}
			}

			candidate := &Candidate{
				Qnode:      rec.WdNode,
				Name:       rec.Name,
				Definition: rec.WdDescription,
				Args:       args,
			}
			for _, ldcType := range rec.LDCTypes {
				for _, roleset := range ldcType.PBRolesets {
					pb := strings.ReplaceAll(roleset, ".", "-")
					pb = strings.ReplaceAll(pb, "_", "-")
					table[pb] = append(table[pb], candidate)
				}
			}
		}
	}
	return writeTable(table, outPath)
}

func writeTable(table Table, outPath string) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal qnode table")
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return errors.Wrapf(err, "write qnode table %s", outPath)
	}
	return nil
}
