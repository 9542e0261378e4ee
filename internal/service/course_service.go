package service

import (
	"strings"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
)

// CourseService exposes the static curriculum catalog.
type CourseService interface {
	Catalog(filter dto.CourseFilter) dto.CourseCatalogResponse
	Subjects() dto.SubjectListResponse
}

type courseService struct{}

// NewCourseService constructs the catalog service.
func NewCourseService() CourseService {
	return courseService{}
}

// Catalog filters courses by class, stream (class 12 only), type and a
// case-insensitive name or code query.
func (courseService) Catalog(filter dto.CourseFilter) dto.CourseCatalogResponse {
	class := normalizeAll(filter.Class)
	stream := normalizeAll(filter.Stream)
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	types := make(map[string]struct{}, len(filter.Types))
	for _, raw := range filter.Types {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				types[t] = struct{}{}
			}
		}
	}

	courses := make([]dto.CourseResponse, 0, len(courseCatalog))
	for _, course := range courseCatalog {
		if class != "" && course.Class != class {
			continue
		}
		if class == "12" && stream != "" && !strings.EqualFold(course.Stream, stream) {
			continue
		}
		if len(types) > 0 {
			if _, ok := types[strings.ToLower(course.Type)]; !ok {
				continue
			}
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(course.Name), query) &&
			!strings.Contains(strings.ToLower(course.Code), query) {
			continue
		}
		courses = append(courses, course)
	}

	return dto.CourseCatalogResponse{
		Courses: courses,
		Combos:  streamCombos,
		FAQs:    courseFAQs,
	}
}

func (courseService) Subjects() dto.SubjectListResponse {
	class12 := make(map[string][]string, len(class12Subjects))
	for stream, subjects := range class12Subjects {
		class12[stream] = append([]string(nil), subjects...)
	}
	return dto.SubjectListResponse{
		Class10: append([]string(nil), class10Subjects...),
		Class12: class12,
		Min:     MinSubjects,
		Max:     MaxSubjects,
	}
}

func normalizeAll(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "all") {
		return ""
	}
	return value
}
