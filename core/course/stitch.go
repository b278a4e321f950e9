package course

// Stitch attaches category and type link rows to their parent courses in
// place. Courses in and out are the same slice, same order, same length; a
// course with no matching links keeps whatever relation slices it already
// carries. Passing empty link slices is a no-op, never an error.
func Stitch(courses []Course, categories []CourseCategory, types []CourseCourseType) {
	if len(categories) > 0 {
		byCourse := make(map[string][]CourseCategory, len(courses))
		for _, cc := range categories {
			byCourse[cc.CourseID] = append(byCourse[cc.CourseID], cc)
		}
		for i := range courses {
			if links, ok := byCourse[courses[i].ID]; ok {
				courses[i].Categories = links
			}
		}
	}
	if len(types) > 0 {
		byCourse := make(map[string][]CourseCourseType, len(courses))
		for _, ct := range types {
			byCourse[ct.CourseID] = append(byCourse[ct.CourseID], ct)
		}
		for i := range courses {
			if links, ok := byCourse[courses[i].ID]; ok {
				courses[i].Types = links
			}
		}
	}
}

// CourseIDs extracts the ids of the given courses, preserving order.
func CourseIDs(courses []Course) []string {
	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	return ids
}
