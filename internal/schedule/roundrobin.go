package schedule

// Pairing is one fixture between two clubs, home side first.
type Pairing struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// RoundRobin builds a single round robin over the given club ids using
// the circle method: one club stays pinned while the rest rotate around
// it. An odd field gets a phantom bye entry, so every club sits out
// exactly one round. Home advantage alternates between rounds to avoid
// the pinned club hosting everything.
func RoundRobin(clubIDs []string) [][]Pairing {
	ids := append([]string(nil), clubIDs...)
	if len(ids) < 2 {
		return nil
	}
	if len(ids)%2 == 1 {
		ids = append(ids, "")
	}
	n := len(ids)

	rounds := make([][]Pairing, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := make([]Pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := ids[i], ids[n-1-i]
			if home == "" || away == "" {
				continue
			}
			if r%2 == 1 {
				home, away = away, home
			}
			round = append(round, Pairing{Home: home, Away: away})
		}
		rounds = append(rounds, round)

		rotated := make([]string, n)
		rotated[0] = ids[0]
		rotated[1] = ids[n-1]
		copy(rotated[2:], ids[1:n-1])
		ids = rotated
	}
	return rounds
}
