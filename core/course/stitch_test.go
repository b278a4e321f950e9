package course

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStitch(t *testing.T) {
	courses := []Course{
		{ID: "c1", Title: "วิทยาการข้อมูลเบื้องต้น"},
		{ID: "c2", Title: "Intro to AI"},
		{ID: "c3", Title: "ภาษาอังกฤษเพื่อการสื่อสาร"},
	}
	categories := []CourseCategory{
		{CourseID: "c1", CategoryID: "cat-tech"},
		{CourseID: "c1", CategoryID: "cat-data"},
		{CourseID: "c3", CategoryID: "cat-lang"},
	}
	types := []CourseCourseType{
		{CourseID: "c2", CourseTypeID: "type-self-paced"},
	}

	Stitch(courses, categories, types)

	// same rows, same order, nothing dropped or duplicated
	assert.Len(t, courses, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, CourseIDs(courses))

	assert.Len(t, courses[0].Categories, 2)
	assert.True(t, courses[0].HasCategory("cat-tech"))
	assert.True(t, courses[0].HasCategory("cat-data"))
	assert.Empty(t, courses[0].Types)

	assert.Empty(t, courses[1].Categories)
	assert.True(t, courses[1].HasType("type-self-paced"))

	assert.True(t, courses[2].HasCategory("cat-lang"))
}

func TestStitchKeepsRepeatedLinkRows(t *testing.T) {
	courses := []Course{{ID: "c1"}}
	repeated := []CourseCategory{
		{CourseID: "c1", CategoryID: "cat-1"},
		{CourseID: "c1", CategoryID: "cat-1"},
	}

	Stitch(courses, repeated, nil)

	// rows attach exactly as stored, repeats included
	assert.Equal(t, repeated, courses[0].Categories)
}

func TestStitchEmptyLinksIsNoop(t *testing.T) {
	courses := []Course{
		{ID: "c1", Categories: []CourseCategory{{CourseID: "c1", CategoryID: "kept"}}},
		{ID: "c2"},
	}

	Stitch(courses, nil, nil)

	assert.Len(t, courses, 2)
	// pre-attached relations survive an empty stitch
	assert.True(t, courses[0].HasCategory("kept"))
	assert.Empty(t, courses[1].Categories)
}

func TestStitchOverwritesStaleRelations(t *testing.T) {
	courses := []Course{
		{ID: "c1", Categories: []CourseCategory{{CourseID: "c1", CategoryID: "stale"}}},
	}
	fresh := []CourseCategory{{CourseID: "c1", CategoryID: "fresh"}}

	Stitch(courses, fresh, nil)

	assert.Equal(t, fresh, courses[0].Categories)
	assert.False(t, courses[0].HasCategory("stale"))
}

func TestCourseUnmarshalRelationKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{
			name: "relation object keys",
			in: `{"id":"c1","title":"ท",
				"courseCategories":[{"course_id":"c1","category_id":"cat-1"}],
				"courseCourseTypes":[{"course_id":"c1","course_type_id":"type-1"}]}`,
		},
		{
			name: "legacy flat keys",
			in: `{"id":"c1","title":"ท",
				"course_categories":[{"course_id":"c1","category_id":"cat-1"}],
				"course_course_types":[{"course_id":"c1","course_type_id":"type-1"}]}`,
		},
		{
			name: "both present: relation object keys win",
			in: `{"id":"c1","title":"ท",
				"courseCategories":[{"course_id":"c1","category_id":"cat-1"}],
				"course_categories":[{"course_id":"c1","category_id":"cat-ignored"}],
				"courseCourseTypes":[{"course_id":"c1","course_type_id":"type-1"}],
				"course_course_types":[{"course_id":"c1","course_type_id":"type-ignored"}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Course
			assert.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, []CourseCategory{{CourseID: "c1", CategoryID: "cat-1"}}, c.Categories)
			assert.Equal(t, []CourseCourseType{{CourseID: "c1", CourseTypeID: "type-1"}}, c.Types)
		})
	}
}
