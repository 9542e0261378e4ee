package dto

// CourseResponse describes a subject offered by the board.
type CourseResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Stream      string `json:"stream,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// CourseFilter narrows the course catalog.
type CourseFilter struct {
	Class  string   `query:"class"`
	Stream string   `query:"stream"`
	Types  []string `query:"type"`
	Query  string   `query:"q"`
}

// StreamComboResponse is a recommended subject combination.
type StreamComboResponse struct {
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
}

// FAQResponse is a frequently asked question about courses.
type FAQResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CourseCatalogResponse lists courses with the recommended combinations.
type CourseCatalogResponse struct {
	Courses []CourseResponse      `json:"courses"`
	Combos  []StreamComboResponse `json:"combos"`
	FAQs    []FAQResponse         `json:"faqs"`
}

// SubjectListResponse lists the selectable subjects of the application form.
type SubjectListResponse struct {
	Class10 []string            `json:"class_10"`
	Class12 map[string][]string `json:"class_12"`
	Min     int                 `json:"min"`
	Max     int                 `json:"max"`
}

// Milestone is an entry on the board timeline.
type Milestone struct {
	Year  int    `json:"year"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Affiliation is a recognising body.
type Affiliation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ServiceLink points visitors at a portal service.
type ServiceLink struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Path        string `json:"path"`
}

// AboutResponse is the about page payload.
type AboutResponse struct {
	Name         string           `json:"name"`
	Established  int              `json:"established"`
	YearsActive  int              `json:"years_active"`
	Summary      string           `json:"summary"`
	Mission      []string         `json:"mission"`
	Vision       []string         `json:"vision"`
	Values       []string         `json:"values"`
	Timeline     []Milestone      `json:"timeline"`
	Affiliations []Affiliation    `json:"affiliations"`
	Services     []ServiceLink    `json:"services"`
	Stats        map[string]int64 `json:"stats"`
}
