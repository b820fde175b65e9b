package compiler

import "testing"

func TestInterpolateTwoPartMarker(t *testing.T) {
	segs := Interpolate("Round [game:round] begins", nil)
	if len(segs) != 3 {
		t.Fatalf("segment count = %d, want 3", len(segs))
	}
	if segs[0].Text != "Round " || segs[0].Score != nil {
		t.Errorf("segment 0 = %+v, want literal 'Round '", segs[0])
	}
	if segs[1].Score == nil || segs[1].Score.Obj != "game" || segs[1].Score.Name != "round" {
		t.Errorf("segment 1 = %+v, want score game:round", segs[1])
	}
	if segs[2].Text != " begins" {
		t.Errorf("segment 2 = %+v, want literal ' begins'", segs[2])
	}
}

func TestInterpolateBareMarkerUnbound(t *testing.T) {
	segs := Interpolate("hello [name]", nil)
	if len(segs) != 1 {
		t.Fatalf("segment count = %d, want 1", len(segs))
	}
	if segs[0].Text != "hello [name]" {
		t.Errorf("text = %q, want the marker left verbatim", segs[0].Text)
	}
}

func TestInterpolateBareMarkerBound(t *testing.T) {
	bind := map[string]ScoreRef{"hp": {Obj: "stats", Name: "hp"}}
	segs := Interpolate("HP: [hp]", bind)
	if len(segs) != 2 {
		t.Fatalf("segment count = %d, want 2", len(segs))
	}
	if segs[1].Score == nil || segs[1].Score.Obj != "stats" {
		t.Errorf("segment 1 = %+v, want bound score stats:hp", segs[1])
	}
}

func TestInterpolateEmpty(t *testing.T) {
	segs := Interpolate("", nil)
	if len(segs) != 1 || segs[0].Text != "" {
		t.Errorf("segments = %+v, want one empty literal", segs)
	}
}

func TestInterpolateAdjacentMarkers(t *testing.T) {
	segs := Interpolate("[a:x][a:y]", nil)
	if len(segs) != 2 {
		t.Fatalf("segment count = %d, want 2", len(segs))
	}
	for i, want := range []string{"x", "y"} {
		if segs[i].Score == nil || segs[i].Score.Name != want {
			t.Errorf("segment %d = %+v, want score a:%s", i, segs[i], want)
		}
	}
}

func TestTellrawJSON(t *testing.T) {
	segs := Interpolate("Round [game:round] begins", nil)
	got, err := TellrawJSON(segs)
	if err != nil {
		t.Fatalf("TellrawJSON: %v", err)
	}
	want := `[{"text":"Round "},{"score":{"name":"round","objective":"game"}},{"text":" begins"}]`
	if got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

func TestTitleJSON(t *testing.T) {
	got, err := TitleJSON("FIGHT")
	if err != nil {
		t.Fatalf("TitleJSON: %v", err)
	}
	if got != `{"text":"FIGHT"}` {
		t.Errorf("json = %s, want {\"text\":\"FIGHT\"}", got)
	}
}
