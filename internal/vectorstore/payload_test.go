package vectorstore

import "testing"

func TestPostPayloadToMap(t *testing.T) {
	p := PostPayload{
		BasePayload: BasePayload{
			Type:       TypePost,
			CategoryID: "cat-1",
			UserID:     "user-1",
			CreatedTs:  1700000000,
		},
		Title:         "Intro to Raft",
		ContentLength: 4200,
		Score:         17,
		Trending:      true,
	}

	m := p.ToMap()

	if m[FieldType] != TypePost {
		t.Errorf("expected type %q, got %v", TypePost, m[FieldType])
	}
	if m[FieldCategoryID] != "cat-1" || m[FieldUserID] != "user-1" {
		t.Error("filterable base fields missing from payload map")
	}
	if m["contentLength"] != int64(4200) {
		t.Errorf("expected contentLength 4200, got %v", m["contentLength"])
	}
	if m["trending"] != true {
		t.Error("expected trending flag in payload map")
	}
}

func TestProfilePayloadRoundTrip(t *testing.T) {
	p := ProfilePayload{
		BasePayload:      BasePayload{Type: TypeProfile, UserID: "u1"},
		CandidatePostIDs: []string{"p1", "p2"},
		ActivityLevel:    "high",
	}

	m := p.ToMap()

	got := PayloadStrings(m, "candidatePostIds")
	if len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("expected candidate ids [p1 p2], got %v", got)
	}
	if PayloadString(m, "activityLevel") != "high" {
		t.Error("expected activity level to survive the round trip")
	}
}

func TestPayloadReadersTolerateMissingAndWidened(t *testing.T) {
	m := map[string]any{
		"int64":   int64(7),
		"float64": float64(9),
	}

	if PayloadInt(m, "int64") != 7 || PayloadInt(m, "float64") != 9 {
		t.Error("expected numeric widening tolerance")
	}
	if PayloadInt(m, "absent") != 0 {
		t.Error("missing field should read as zero")
	}
	if PayloadString(nil, "anything") != "" {
		t.Error("nil payload should read as empty")
	}
	if PayloadStrings(m, "int64") != nil {
		t.Error("non-list field should read as nil")
	}
}
