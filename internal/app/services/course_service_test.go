package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/repositories"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
)

// fakeCourseStore is an in-memory CourseStore.
type fakeCourseStore struct {
	courses map[int64]*models.Course
	nextID  int64
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: map[int64]*models.Course{}, nextID: 1}
}

func (f *fakeCourseStore) Create(_ context.Context, course *models.Course) (int64, error) {
	for _, existing := range f.courses {
		if existing.Name == course.Name {
			return 0, apperrors.ErrCourseNameTaken
		}
	}
	course.ID = f.nextID
	f.nextID++
	stored := *course
	f.courses[course.ID] = &stored
	return course.ID, nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, id int64) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *course
	return &copied, nil
}

func (f *fakeCourseStore) List(_ context.Context, offset uint64, limit int) ([]*models.Course, error) {
	out := []*models.Course{}
	for _, course := range f.courses {
		out = append(out, course)
	}
	return out, nil
}

func (f *fakeCourseStore) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.courses)), nil
}

func (f *fakeCourseStore) CountByNamePrefix(_ context.Context, prefix string) (int64, error) {
	var count int64
	for _, course := range f.courses {
		if strings.HasPrefix(course.Name, prefix) {
			count++
		}
	}
	return count, nil
}

func (f *fakeCourseStore) Update(_ context.Context, course *models.Course) error {
	if _, ok := f.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *course
	f.courses[course.ID] = &stored
	return nil
}

func (f *fakeCourseStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}

// fakeSessionLister returns a fixed session list per course.
type fakeSessionLister struct {
	byCourse map[int64][]*models.Session
}

func (f *fakeSessionLister) ListByCourse(_ context.Context, courseID int64) ([]*models.Session, error) {
	return f.byCourse[courseID], nil
}

func newCourseService(store *fakeCourseStore) *CourseService {
	return NewCourseService(store, &fakeSessionLister{byCourse: map[int64][]*models.Session{}})
}

func TestCreateCourseRejectsNameEqualDescription(t *testing.T) {
	svc := newCourseService(newFakeCourseStore())

	desc := "Advanced Go"
	err := svc.CreateCourse(context.Background(), &models.Course{Name: "Advanced Go", Description: &desc})

	assert.ErrorIs(t, err, apperrors.ErrCourseNameIsDescription)
}

func TestCreateCourseRequiresName(t *testing.T) {
	svc := newCourseService(newFakeCourseStore())

	err := svc.CreateCourse(context.Background(), &models.Course{Name: "   "})

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCopyCourseNaming(t *testing.T) {
	store := newFakeCourseStore()
	svc := newCourseService(store)

	original := &models.Course{Name: "Advanced Go"}
	require.NoError(t, svc.CreateCourse(context.Background(), original))

	first, err := svc.CopyCourse(context.Background(), original.ID, dto.CopyCourseRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Copy of Advanced Go", first.Name)

	second, err := svc.CopyCourse(context.Background(), original.ID, dto.CopyCourseRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Copy of Advanced Go (1)", second.Name)

	third, err := svc.CopyCourse(context.Background(), original.ID, dto.CopyCourseRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Copy of Advanced Go (2)", third.Name)
}

func TestCopyCourseIgnoresNameOverride(t *testing.T) {
	store := newFakeCourseStore()
	svc := newCourseService(store)

	original := &models.Course{Name: "Advanced Go"}
	require.NoError(t, svc.CreateCourse(context.Background(), original))

	override := "My Custom Title"
	copied, err := svc.CopyCourse(context.Background(), original.ID, dto.CopyCourseRequest{Name: &override})
	require.NoError(t, err)

	assert.Equal(t, "Copy of Advanced Go", copied.Name)
}

func TestCopyCourseAppliesFieldOverrides(t *testing.T) {
	store := newFakeCourseStore()
	svc := newCourseService(store)

	desc := "Original description"
	responsible := int64(7)
	original := &models.Course{Name: "Advanced Go", Description: &desc, ResponsibleID: &responsible}
	require.NoError(t, svc.CreateCourse(context.Background(), original))

	newDesc := "Adjusted description"
	copied, err := svc.CopyCourse(context.Background(), original.ID, dto.CopyCourseRequest{Description: &newDesc})
	require.NoError(t, err)

	require.NotNil(t, copied.Description)
	assert.Equal(t, newDesc, *copied.Description)
	require.NotNil(t, copied.ResponsibleID)
	assert.Equal(t, responsible, *copied.ResponsibleID, "unset fields inherit from the source")
}

func TestCopyCourseMissingSource(t *testing.T) {
	svc := newCourseService(newFakeCourseStore())

	_, err := svc.CopyCourse(context.Background(), 42, dto.CopyCourseRequest{})

	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestUpdateCoursePartial(t *testing.T) {
	store := newFakeCourseStore()
	svc := newCourseService(store)

	desc := "Fundamentals"
	course := &models.Course{Name: "Databases", Description: &desc}
	require.NoError(t, svc.CreateCourse(context.Background(), course))

	newName := "Advanced Databases"
	updated, err := svc.UpdateCourse(context.Background(), course.ID, dto.UpdateCourseRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, newName, updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description, "untouched fields keep their values")
}

func TestDeleteCourseNotFound(t *testing.T) {
	svc := newCourseService(newFakeCourseStore())

	err := svc.DeleteCourse(context.Background(), 99)

	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}
