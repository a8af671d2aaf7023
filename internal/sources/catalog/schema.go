package catalog

// File is the top-level structure of categories.yaml
//
//	categories:
//	  - slug: sport
//	    label: Sports
//	    aliases: [sports]
type File struct {
	Categories []CategoryProps `yaml:"categories"`
}

// CategoryProps is one category entry as written in the file
type CategoryProps struct {
	Slug    string   `yaml:"slug"`
	Label   string   `yaml:"label,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
}
