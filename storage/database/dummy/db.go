package dummydb

import (
	"sync"

	"github.com/thaimooc/platform/core/content"
	"github.com/thaimooc/platform/core/course"
	"github.com/thaimooc/platform/core/institution"
	"github.com/thaimooc/platform/core/support"
	"github.com/thaimooc/platform/core/user"
)

type (
	DB struct {
		institution *institutionTable
		course      *courseTable
		content     *contentTable
		support     *supportTable
		user        *userTable
	}

	institutionTable struct {
		sync.RWMutex
		table map[string]*institution.Institution
		menus map[string][]institution.MenuItem // institution id + ":" + position
	}

	courseTable struct {
		sync.RWMutex
		table      map[string]*course.Course
		categories map[string]*course.Category
		types      map[string]*course.CourseType
		catLinks   []course.CourseCategory
		typeLinks  []course.CourseCourseType
		guestLinks map[string][]string // institution id -> course ids
	}

	contentTable struct {
		sync.RWMutex
		news    map[string]*content.News
		banners map[string]*content.Banner
		guides  map[string]*content.Guide
	}

	supportTable struct {
		sync.RWMutex
		table map[string]*support.Ticket
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
)

func Open() (*DB, error) {
	db := &DB{
		institution: &institutionTable{
			table: make(map[string]*institution.Institution),
			menus: make(map[string][]institution.MenuItem),
		},
		course: &courseTable{
			table:      make(map[string]*course.Course),
			categories: make(map[string]*course.Category),
			types:      make(map[string]*course.CourseType),
			guestLinks: make(map[string][]string),
		},
		content: &contentTable{
			news:    make(map[string]*content.News),
			banners: make(map[string]*content.Banner),
			guides:  make(map[string]*content.Guide),
		},
		support: &supportTable{table: make(map[string]*support.Ticket)},
		user:    &userTable{table: make(map[string]*user.User)},
	}
	return db, nil
}
