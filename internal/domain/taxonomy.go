package domain

// Category and Zone are shared taxonomies, not tenant-scoped.

type Category struct {
	ID   int64  `db:"category_id"`
	Name string `db:"name"`

	Base
}

type Zone struct {
	ID   int64  `db:"zone_id"`
	Name string `db:"name"`

	Base
}
