package models

// Student is the profile of a user with the student role.
type Student struct {
	ID            int64  `db:"id" json:"id"`
	UserID        int64  `db:"user_id" json:"user_id"`
	StudentNumber string `db:"student_number" json:"student_number"`
	Name          string `db:"name" json:"name"`
	Department    string `db:"department" json:"department"`
}
