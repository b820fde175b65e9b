package compiler

import "regexp"

// ---------------------------------------------------------------------------
// Interpolation: [obj:name] markers inside v-strings
// ---------------------------------------------------------------------------

// Segment is one piece of an interpolated text: either a literal run or a
// dynamic scoreboard reference.
type Segment struct {
	Text  string
	Score *ScoreRef // non-nil for dynamic segments
}

// markerRe matches [obj:name] and bare [name] reference markers.
var markerRe = regexp.MustCompile(`\[([A-Za-z_][A-Za-z0-9_]*)(?::([A-Za-z_][A-Za-z0-9_]*))?\]`)

// Interpolate splits text into literal and score segments. Two-part markers
// [obj:name] always become score segments. A bare [name] becomes a score
// segment only when bind resolves it; otherwise the marker stays verbatim in
// the surrounding literal run. Interpolation never fails: anything that is
// not a resolvable marker degrades to plain text.
func Interpolate(text string, bind map[string]ScoreRef) []Segment {
	var segs []Segment
	last := 0
	for _, m := range markerRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		first := text[m[2]:m[3]]

		var ref ScoreRef
		if m[4] >= 0 {
			ref = ScoreRef{Obj: first, Name: text[m[4]:m[5]]}
		} else if r, ok := bind[first]; ok {
			ref = r
		} else {
			continue // unknown bare marker: leave it in the literal run
		}

		if start > last {
			segs = append(segs, Segment{Text: text[last:start]})
		}
		r := ref
		segs = append(segs, Segment{Score: &r})
		last = end
	}
	if last < len(text) || len(segs) == 0 {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// tellraw JSON component shapes; field order matters for bit-exact output.

type textComponent struct {
	Text string `json:"text"`
}

type scoreComponent struct {
	Score scoreSpec `json:"score"`
}

type scoreSpec struct {
	Name      string `json:"name"`
	Objective string `json:"objective"`
}

// TellrawJSON renders segments as the JSON array a tellraw command accepts.
func TellrawJSON(segs []Segment) (string, error) {
	comps := make([]interface{}, 0, len(segs))
	for _, s := range segs {
		if s.Score != nil {
			comps = append(comps, scoreComponent{Score: scoreSpec{
				Name:      s.Score.Name,
				Objective: s.Score.Obj,
			}})
		} else {
			comps = append(comps, textComponent{Text: s.Text})
		}
	}
	b, err := marshalNoEscape(comps)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TitleJSON renders plain title text as its JSON object form.
func TitleJSON(text string) (string, error) {
	b, err := marshalNoEscape(textComponent{Text: text})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
