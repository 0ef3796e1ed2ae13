package models

// Area is a service category shown as a chip on the home and search views.
type Area struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}
