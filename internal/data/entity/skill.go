package entity

type Skill struct {
	ID       int    `db:"id"`
	Name     string `db:"name"`
	Category string `db:"category"`
}
