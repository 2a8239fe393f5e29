package bookmark

// BookmarksKey holds the bookmark ledger, map[userID][]questionID.
const BookmarksKey = "fp_bookmarks"

// AddRequest is the body of POST /users/bookmark.
type AddRequest struct {
	QuestionID int `json:"questionId" validate:"required"`
}

// Result is returned after a bookmark is stored.
type Result struct {
	Msg string `json:"msg"`
}
