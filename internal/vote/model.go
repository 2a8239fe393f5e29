package vote

// VotesKey holds the vote ledger, map[userID][]questionID.
const VotesKey = "fp_votes"

// Result is returned after a successful vote.
type Result struct {
	Msg string `json:"msg"`
}
