package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func TestDecodeDocument_JSON(t *testing.T) {
	doc, err := DecodeDocument("mats_base.json", readFixture(t, "mats_base.json"))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v, want nil", err)
	}

	if len(doc.MatchRules) != 3 {
		t.Fatalf("MatchRules count = %d, want 3", len(doc.MatchRules))
	}

	wantKeys := []string{"leather", "ArmorMaterialIron", "ArmorJewelry"}
	for i, want := range wantKeys {
		if doc.MatchRules[i].Key != want {
			t.Errorf("MatchRules[%d].Key = %q, want %q", i, doc.MatchRules[i].Key, want)
		}
	}

	iron, ok := doc.Lookup("armormaterialiron")
	if !ok {
		t.Fatal("Lookup(armormaterialiron) not found")
	}
	if len(iron) != 2 {
		t.Fatalf("iron rules = %d, want 2", len(iron))
	}
	if iron[0].Ratio.String() != "1/20" {
		t.Errorf("iron ratio = %s, want 1/20", iron[0].Ratio)
	}

	jewelry, ok := doc.Lookup("ArmorJewelry")
	if !ok || len(jewelry) != 0 {
		t.Errorf("ArmorJewelry = %v, %v, want empty list", jewelry, ok)
	}

	if len(doc.ExcludedKeys) != 1 || doc.ExcludedKeys[0] != "Skyrim.esm|0xA8668" {
		t.Errorf("ExcludedKeys = %v", doc.ExcludedKeys)
	}
}

func TestDecodeDocument_YAMLFractionAndQuotedRatio(t *testing.T) {
	doc, err := DecodeDocument("mats_override.yaml", readFixture(t, "mats_override.yaml"))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v, want nil", err)
	}

	iron, _ := doc.Lookup("ArmorMaterialIron")
	if len(iron) != 1 || iron[0].Ratio.String() != "1/3" {
		t.Errorf("iron = %+v, want one rule with ratio 1/3", iron)
	}

	steel, _ := doc.Lookup("WeapMaterialSteel")
	if len(steel) != 1 || steel[0].Ratio.String() != "3/20" {
		t.Errorf("steel = %+v, want one rule with ratio 3/20", steel)
	}
}

func TestDecodeDocument_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantVal bool
		wantPar bool
		wantLd  bool
	}{
		{name: "key maps to a mapping", data: readFixture(t, "not_a_list.json"), wantVal: true},
		{name: "negative ratio", data: readFixture(t, "negative_ratio.yaml"), wantVal: true},
		{name: "malformed", data: readFixture(t, "malformed.json"), wantPar: true},
		{name: "empty", data: []byte("   \n"), wantVal: true},
		{name: "root is a list", data: []byte(`["a"]`), wantVal: true},
		{name: "missing target", data: []byte(`{"Keywords": {"a": [{"matRatio": 1}]}}`), wantVal: true},
		{name: "missing ratio", data: []byte(`{"Keywords": {"a": [{"recycleTo": "x"}]}}`), wantVal: true},
		{name: "null rule list", data: []byte(`{"Keywords": {"a": null}}`), wantVal: true},
		{name: "case-folded duplicate key", data: []byte("Keywords:\n  Iron: []\n  IRON: []\n"), wantVal: true},
		{name: "invalid utf8", data: []byte{0xff, 0xfe, 0xfd}, wantLd: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument("doc", tt.data)
			if err == nil {
				t.Fatal("DecodeDocument() error = nil, want error")
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("error %v does not match ErrConfiguration", err)
			}

			var valErr *ValidationError
			var parseErr *ParseError
			var loadErr *LoadError
			if tt.wantVal && !errors.As(err, &valErr) {
				t.Errorf("error type = %T, want *ValidationError", err)
			}
			if tt.wantPar && !errors.As(err, &parseErr) {
				t.Errorf("error type = %T, want *ParseError", err)
			}
			if tt.wantLd && !errors.As(err, &loadErr) {
				t.Errorf("error type = %T, want *LoadError", err)
			}
		})
	}
}

func TestDecodeDocument_NotAListReportsKey(t *testing.T) {
	_, err := DecodeDocument("not_a_list.json", readFixture(t, "not_a_list.json"))

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if valErr.Key != "leather" {
		t.Errorf("Key = %q, want leather", valErr.Key)
	}
	if valErr.Line != 3 {
		t.Errorf("Line = %d, want 3", valErr.Line)
	}
}

func TestDecodeExclusions(t *testing.T) {
	doc, err := DecodeExclusions("ignore.json", readFixture(t, "ignore.json"))
	if err != nil {
		t.Fatalf("DecodeExclusions() error = %v", err)
	}
	if len(doc.ExcludedKeys) != 3 {
		t.Errorf("ExcludedKeys = %v, want 3 entries", doc.ExcludedKeys)
	}
	if len(doc.MatchRules) != 0 {
		t.Errorf("MatchRules = %v, want none", doc.MatchRules)
	}

	if _, err := DecodeExclusions("bad", []byte(`{"a": 1}`)); !errors.Is(err, ErrConfiguration) {
		t.Errorf("DecodeExclusions(mapping) error = %v, want configuration error", err)
	}
}
