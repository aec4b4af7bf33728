package catalog

// Subject is a catalog entity. Access is the admin-controlled access-level
// flag; 0 means closed.
type Subject struct {
	ID       int    `json:"id"`
	Codename string `json:"codename"`
	Name     string `json:"name"`
	Access   int    `json:"access"`
}

// Task is an exercise authored by a platform user.
type Task struct {
	ID          int    `json:"id"`
	Content     string `json:"content"`
	Answer      string `json:"answer"`
	Description string `json:"description"`
	UserID      int    `json:"-"`
}
