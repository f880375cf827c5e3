package incident

import "strings"

// keywordTriggers maps lower-case substrings to canonical keywords.
// Several triggers may map to the same keyword. "collide" covers verb
// forms such as "collided" that "collision" does not match.
var keywordTriggers = []struct {
	keyword  string
	triggers []string
}{
	{KeywordFireHazard, []string{"fire", "flames"}},
	{KeywordSmoke, []string{"smoke"}},
	{KeywordTrappedOccupants, []string{"trapped"}},
	{KeywordInjuries, []string{"injury", "injured"}},
	{KeywordVehicleCollision, []string{"collision", "crash", "collide"}},
	{KeywordFuelLeak, []string{"fuel", "leak"}},
}

// ExtractKeywords scans the descriptions for hazard trigger words,
// case-insensitively, and returns the matched canonical keywords.
func ExtractKeywords(descriptions []string) KeywordSet {
	text := strings.ToLower(strings.Join(descriptions, " "))

	keywords := make(KeywordSet)
	for _, kt := range keywordTriggers {
		for _, trigger := range kt.triggers {
			if strings.Contains(text, trigger) {
				keywords[kt.keyword] = struct{}{}
				break
			}
		}
	}
	return keywords
}
