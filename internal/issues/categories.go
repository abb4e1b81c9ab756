package issues

// Category groups closed issues in the announcement
type Category struct {
	Title string
	Label string
}

// Categories in announcement order
var Categories = []Category{
	{Title: "Fix", Label: "bug"},
	{Title: "Update", Label: "update"},
	{Title: "New", Label: "new"},
	{Title: "Doc", Label: "doc"},
}

// Bucket holds the issues of one category
type Bucket struct {
	Category Category
	Issues   []Issue
}

// Categorized is the ordered list of buckets for a release
type Categorized []Bucket

// Total returns the number of issues across all buckets
func (c Categorized) Total() int {
	n := 0
	for _, b := range c {
		n += len(b.Issues)
	}
	return n
}

// Add appends issue to the bucket titled title, creating the bucket if needed
func (c Categorized) Add(title string, issue Issue) Categorized {
	for i := range c {
		if c[i].Category.Title == title {
			c[i].Issues = append(c[i].Issues, issue)
			return c
		}
	}
	for _, category := range Categories {
		if category.Title == title {
			return append(c, Bucket{Category: category, Issues: []Issue{issue}})
		}
	}
	return append(c, Bucket{Category: Category{Title: title}, Issues: []Issue{issue}})
}
