package model

// Hotline 是一条危机求助热线。
type Hotline struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Description string   `json:"description"`
	Hours       string   `json:"hours"`
	Website     string   `json:"website"`
	Categories  []string `json:"categories"`
}

// Resource 是一条精选外部资源。
type Resource struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}
