package wcag

import (
	"fmt"
	"regexp"
)

// Levels lists the conformance levels in evaluation order.
var Levels = []Level{LevelA, LevelAA, LevelAAA}

// registry is built once at init and never mutated afterwards. All
// accessors return copies.
type registry struct {
	byLevel map[Level][]Criterion
	levelOf map[string]Level
	ordered []Criterion
}

var reg = buildRegistry()

func buildRegistry() *registry {
	r := &registry{
		byLevel: make(map[Level][]Criterion, 3),
		levelOf: make(map[string]Level),
	}
	for _, entry := range []struct {
		level Level
		ids   []string
	}{
		{LevelA, levelA},
		{LevelAA, levelAA},
		{LevelAAA, levelAAA},
	} {
		for _, id := range entry.ids {
			if prev, dup := r.levelOf[id]; dup {
				panic(fmt.Sprintf("wcag: criterion %s listed for both %s and %s", id, prev, entry.level))
			}
			c := Criterion{ID: id, Level: entry.level}
			r.levelOf[id] = entry.level
			r.byLevel[entry.level] = append(r.byLevel[entry.level], c)
			r.ordered = append(r.ordered, c)
		}
	}
	return r
}

// codePattern matches the guideline-and-criterion token embedded in rule
// codes, e.g. the "2_4_1" in "WCAG2AA.Principle2.Guideline2_4.2_4_1.H64".
var codePattern = regexp.MustCompile(`(?:^|[._])(\d+)_(\d+)_(\d+)(?:[._]|$)`)

// CriterionFromCode extracts the dotted success-criterion identifier
// embedded in a rule code. ok is false when the code carries no such token.
func CriterionFromCode(code string) (id string, ok bool) {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return "", false
	}
	return m[1] + "." + m[2] + "." + m[3], true
}

// LevelOf resolves a rule code to the conformance level of its embedded
// criterion, checking A, then AA, then AAA. Codes with no token, or with a
// token outside the catalog, resolve to LevelUnknown.
func LevelOf(code string) Level {
	id, ok := CriterionFromCode(code)
	if !ok {
		return LevelUnknown
	}
	return LevelOfCriterion(id)
}

// LevelOfCriterion returns the level of a criterion identifier, or
// LevelUnknown when it is not in the catalog.
func LevelOfCriterion(id string) Level {
	if level, ok := reg.levelOf[id]; ok {
		return level
	}
	return LevelUnknown
}

// Criteria returns the full catalog in declared order: all of level A, then
// AA, then AAA.
func Criteria() []Criterion {
	out := make([]Criterion, len(reg.ordered))
	copy(out, reg.ordered)
	return out
}

// CriteriaByLevel returns the catalog grouped by level, each list in
// declared order.
func CriteriaByLevel() map[Level][]Criterion {
	out := make(map[Level][]Criterion, len(reg.byLevel))
	for level, list := range reg.byLevel {
		cp := make([]Criterion, len(list))
		copy(cp, list)
		out[level] = cp
	}
	return out
}

// LevelCriteria returns the criteria of one level in declared order.
func LevelCriteria(level Level) []Criterion {
	list := reg.byLevel[level]
	cp := make([]Criterion, len(list))
	copy(cp, list)
	return cp
}

// RequiredLevels returns the levels that must pass for an audit targeting
// the given level: AA requires A and AA; AAA requires all three.
func RequiredLevels(target Level) []Level {
	switch target {
	case LevelA:
		return []Level{LevelA}
	case LevelAA:
		return []Level{LevelA, LevelAA}
	case LevelAAA:
		return []Level{LevelA, LevelAA, LevelAAA}
	default:
		return nil
	}
}
