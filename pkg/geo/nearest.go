package geo

// Candidate is anything that may be located. A nil Position means the candidate
// has no resolvable position and is never considered.
type Candidate struct {
	ID       string
	Position *Point
}

type Match struct {
	ID       string
	Index    int
	Position Point
	Distance float64
}

// Nearest scans the candidates in order and returns the closest one to the
// reference. Ties keep the first candidate encountered.
func Nearest(reference Point, candidates []Candidate) (Match, bool) {
	var best Match
	found := false

	for i, candidate := range candidates {
		if candidate.Position == nil {
			continue
		}

		distance := Distance(reference, *candidate.Position)
		if !found || distance < best.Distance {
			best = Match{
				ID:       candidate.ID,
				Index:    i,
				Position: *candidate.Position,
				Distance: distance,
			}
			found = true
		}
	}

	return best, found
}
