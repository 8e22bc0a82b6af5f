package models

// Classroom is a bookable room owned by a department.
type Classroom struct {
	ID         int64  `db:"id" json:"id"`
	RoomNumber string `db:"room_number" json:"room_number"`
	Building   string `db:"building" json:"building"`
	Capacity   int    `db:"capacity" json:"capacity"`
	Type       string `db:"type" json:"type"`
	Department string `db:"department" json:"department"`
	IsActive   bool   `db:"is_active" json:"is_active"`
}
