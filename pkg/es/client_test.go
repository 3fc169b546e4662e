package es

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBuildHybridQueryWithVector(t *testing.T) {
	q := BuildHybridQuery("feeling anxious", []float32{0.1, 0.2}, nil, 3)
	if q["size"] != 3 {
		t.Fatalf("expected size 3, got %v", q["size"])
	}
	knn, ok := q["knn"].(map[string]interface{})
	if !ok {
		t.Fatal("expected knn clause")
	}
	if knn["k"] != 15 || knn["num_candidates"] != 90 {
		t.Fatalf("unexpected knn sizing %+v", knn)
	}
	if _, ok := q["rescore"]; !ok {
		t.Fatal("expected rescore clause")
	}
	raw, _ := json.Marshal(q)
	if !strings.Contains(string(raw), `"is_public":true`) {
		t.Fatalf("query must filter to public documents: %s", raw)
	}
}

func TestBuildHybridQueryKeywordOnly(t *testing.T) {
	q := BuildHybridQuery("work", nil, nil, 0)
	if _, ok := q["knn"]; ok {
		t.Fatal("knn clause should be omitted without a vector")
	}
	if q["size"] != 10 {
		t.Fatalf("expected default size 10, got %v", q["size"])
	}
}

func TestBuildHybridQueryTagFilter(t *testing.T) {
	q := BuildHybridQuery("tired", []float32{0.3}, []string{"work", "sleep"}, 5)
	raw, _ := json.Marshal(q)
	for _, want := range []string{`{"term":{"tags":"work"}}`, `{"term":{"tags":"sleep"}}`, `{"term":{"is_public":true}}`} {
		if strings.Count(string(raw), want) != 2 {
			t.Fatalf("expected %s in both the bool and knn filters: %s", want, raw)
		}
	}
}

func TestIndexMappingIsValidJSON(t *testing.T) {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(IndexMapping(8)), &m); err != nil {
		t.Fatalf("mapping is not valid JSON: %v", err)
	}
	if !strings.Contains(IndexMapping(8), `"dims": 8`) {
		t.Fatal("mapping does not carry the vector dimensions")
	}
}
