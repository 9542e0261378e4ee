package service

import "github.com/noah-isme/dsbe-portal-api/internal/dto"

// Subject selection bounds on the application form.
const (
	MinSubjects = 5
	MaxSubjects = 7
)

// Streams offered in class 12.
const (
	StreamScience  = "Science"
	StreamCommerce = "Commerce"
	StreamArts     = "Arts"
)

var class10Subjects = []string{
	"English", "Hindi/Sanskrit", "Mathematics", "Science", "Social Science",
	"Information Technology", "Home Science", "Painting",
}

var class12Subjects = map[string][]string{
	StreamScience:  {"English Core", "Physics", "Chemistry", "Mathematics", "Biology", "Computer Science", "Physical Education"},
	StreamCommerce: {"English Core", "Accountancy", "Business Studies", "Economics", "Mathematics", "Entrepreneurship", "Physical Education"},
	StreamArts:     {"English Core", "History", "Political Science", "Geography", "Sociology", "Psychology", "Economics", "Fine Arts"},
}

var courseCatalog = []dto.CourseResponse{
	{Code: "10-ENG", Name: "English", Class: "10", Type: "Compulsory", Description: "Core English language and literature."},
	{Code: "10-HIN", Name: "Hindi/Sanskrit", Class: "10", Type: "Compulsory", Description: "Second language."},
	{Code: "10-MAT", Name: "Mathematics", Class: "10", Type: "Compulsory", Description: "Algebra, geometry, statistics."},
	{Code: "10-SCI", Name: "Science", Class: "10", Type: "Compulsory", Description: "Physics, Chemistry, Biology basics."},
	{Code: "10-SST", Name: "Social Science", Class: "10", Type: "Compulsory", Description: "History, Civics, Geography, Economics."},
	{Code: "10-IT", Name: "Information Technology", Class: "10", Type: "Skill", Description: "Digital skills & productivity tools."},
	{Code: "12-ENGC", Name: "English Core", Class: "12", Stream: StreamScience, Type: "Compulsory", Description: "Advanced English language."},
	{Code: "12-PHY", Name: "Physics", Class: "12", Stream: StreamScience, Type: "Elective", Description: "Mechanics, E&M, optics."},
	{Code: "12-CHE", Name: "Chemistry", Class: "12", Stream: StreamScience, Type: "Elective", Description: "Physical, Inorganic & Organic chemistry."},
	{Code: "12-MAT", Name: "Mathematics", Class: "12", Stream: StreamScience, Type: "Elective", Description: "Calculus, algebra, vectors."},
	{Code: "12-BIO", Name: "Biology", Class: "12", Stream: StreamScience, Type: "Elective", Description: "Genetics, evolution, ecology."},
	{Code: "12-ACC", Name: "Accountancy", Class: "12", Stream: StreamCommerce, Type: "Compulsory", Description: "Financial accounting."},
	{Code: "12-BST", Name: "Business Studies", Class: "12", Stream: StreamCommerce, Type: "Compulsory", Description: "Management, marketing."},
	{Code: "12-ECO", Name: "Economics", Class: "12", Stream: StreamCommerce, Type: "Elective", Description: "Micro & macroeconomics."},
	{Code: "12-HIS", Name: "History", Class: "12", Stream: StreamArts, Type: "Compulsory", Description: "Modern world & Indian history."},
	{Code: "12-PSC", Name: "Political Science", Class: "12", Stream: StreamArts, Type: "Compulsory", Description: "Political theory & Indian polity."},
	{Code: "12-GEO", Name: "Geography", Class: "12", Stream: StreamArts, Type: "Elective", Description: "Physical & human geography."},
}

var streamCombos = []dto.StreamComboResponse{
	{Name: "PCM (Science)", Subjects: []string{"Physics", "Chemistry", "Mathematics", "English Core"}},
	{Name: "PCB (Science)", Subjects: []string{"Physics", "Chemistry", "Biology", "English Core"}},
	{Name: "Commerce with Math", Subjects: []string{"Accountancy", "Business Studies", "Economics", "Mathematics"}},
	{Name: "Humanities", Subjects: []string{"History", "Political Science", "Geography", "English Core"}},
}

var courseFAQs = []dto.FAQResponse{
	{Question: "How do I choose the right stream?", Answer: "Choose based on your interests and career goals. Science suits engineering/medicine; Commerce for business/finance; Arts for humanities/law."},
	{Question: "What is the window for changing subjects?", Answer: "You can change subjects within the first month of the academic session, subject to availability."},
	{Question: "How are practicals conducted?", Answer: "Practicals are scheduled at affiliated centers with internal/external examiners."},
}

// subjectsFor returns the selectable subjects for a class and stream, or
// false when the stream is not offered.
func subjectsFor(class, stream string) ([]string, bool) {
	if class == "10" {
		return class10Subjects, true
	}
	subjects, ok := class12Subjects[stream]
	return subjects, ok
}
