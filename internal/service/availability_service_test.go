package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type stubSubjectFinder struct {
	subject *models.Subject
	err     error
}

func (s stubSubjectFinder) FindActiveByID(context.Context, int64) (*models.Subject, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.subject == nil {
		return nil, sql.ErrNoRows
	}
	return s.subject, nil
}

type stubCandidateLister struct {
	candidates []models.FacultyCandidate
	err        error
}

func (s stubCandidateLister) ListCandidates(context.Context, int64) ([]models.FacultyCandidate, error) {
	return s.candidates, s.err
}

func candidate(id int64, name, department string, years *int, active int, specialization *string) models.FacultyCandidate {
	return models.FacultyCandidate{
		Faculty: models.Faculty{
			ID:              id,
			UserID:          id + 100,
			EmployeeID:      "EMP" + name,
			Name:            name,
			Department:      department,
			Designation:     "Lecturer",
			Specialization:  specialization,
			ExperienceYears: years,
		},
		ActiveAssignments: active,
	}
}

func TestAvailableFacultyRanksDepartmentOverLoad(t *testing.T) {
	subject := &models.Subject{ID: 1, Code: "CS101", Name: "Intro", Department: "CS", IsActive: true}
	svc := NewAvailabilityService(stubSubjectFinder{subject: subject}, stubCandidateLister{candidates: []models.FacultyCandidate{
		candidate(2, "F2", "Math", intPtr(3), 0, nil),
		candidate(1, "F1", "CS", intPtr(6), 1, nil),
	}}, nil)

	report, err := svc.AvailableFaculty(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, report.Faculty, 2)
	assert.Equal(t, int64(1), report.Faculty[0].FacultyID)
	assert.Equal(t, 25, report.Faculty[0].Score)
	assert.True(t, report.Faculty[0].SameDepartment)
	assert.Equal(t, int64(2), report.Faculty[1].FacultyID)
	assert.Equal(t, 13, report.Faculty[1].Score)

	assert.Equal(t, "CS101", report.Subject.Code)
	assert.Equal(t, models.AvailabilityStats{TotalEligible: 2, SameDepartment: 1, AverageLoad: 0.5}, report.Stats)
	require.Len(t, report.Recommendations, 2)
	assert.Equal(t, []string{"Same department (CS)", "6 years of experience", "Light workload (1 active assignments)"}, report.Recommendations[0].Reasons)
	assert.Equal(t, []string{"Light workload (0 active assignments)"}, report.Recommendations[1].Reasons)
}

func TestAvailableFacultySpecializationBonus(t *testing.T) {
	subject := &models.Subject{ID: 1, Name: "Data Structures and Algorithms", Department: "CS"}
	svc := NewAvailabilityService(stubSubjectFinder{subject: subject}, stubCandidateLister{candidates: []models.FacultyCandidate{
		candidate(1, "Alan", "Math", intPtr(4), 4, strPtr("Algorithm Design")),
		candidate(2, "Bea", "Math", intPtr(4), 4, strPtr("Art and History")),
	}}, nil)

	report, err := svc.AvailableFaculty(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.Faculty[0].FacultyID)
	assert.Equal(t, 15, report.Faculty[0].Score)
	assert.Equal(t, []string{"algorithms"}, report.Faculty[0].MatchedKeywords)
	assert.Equal(t, 10, report.Faculty[1].Score)
	assert.Empty(t, report.Faculty[1].MatchedKeywords)
	assert.Contains(t, report.Recommendations[1].Reasons, "Has specialization: Art and History")
}

func TestAvailableFacultyTieBreaks(t *testing.T) {
	subject := &models.Subject{ID: 1, Name: "Physics", Department: "Science"}
	svc := NewAvailabilityService(stubSubjectFinder{subject: subject}, stubCandidateLister{candidates: []models.FacultyCandidate{
		candidate(4, "dana", "Arts", intPtr(1), 1, nil),
		candidate(3, "Carl", "Arts", intPtr(1), 1, nil),
		candidate(2, "Zed", "Arts", intPtr(2), 2, nil),
		candidate(1, "Omar", "science", nil, 10, nil),
	}}, nil)

	report, err := svc.AvailableFaculty(context.Background(), 1)
	require.NoError(t, err)

	ids := make([]int64, 0, len(report.Faculty))
	for _, f := range report.Faculty {
		ids = append(ids, f.FacultyID)
	}
	// Everyone scores 10: department first, then lower load, then case-insensitive name.
	assert.Equal(t, []int64{1, 3, 4, 2}, ids)
	assert.Equal(t, 10, report.Faculty[0].Score)
	assert.Equal(t, 10, report.Faculty[1].Score)
	assert.Len(t, report.Recommendations, 3)
}

func TestAvailableFacultyEmptyPool(t *testing.T) {
	subject := &models.Subject{ID: 1, Name: "Physics"}
	svc := NewAvailabilityService(stubSubjectFinder{subject: subject}, stubCandidateLister{}, nil)

	report, err := svc.AvailableFaculty(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, report.Faculty)
	assert.NotNil(t, report.Recommendations)
	assert.Zero(t, report.Stats.AverageLoad)
}

func TestAvailableFacultySubjectNotFound(t *testing.T) {
	svc := NewAvailabilityService(stubSubjectFinder{}, stubCandidateLister{}, nil)

	_, err := svc.AvailableFaculty(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSubjectNotFound))

	_, err = svc.AvailableFaculty(context.Background(), 0)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAvailableFacultyStoreFailure(t *testing.T) {
	subject := &models.Subject{ID: 1, Name: "Physics"}
	svc := NewAvailabilityService(stubSubjectFinder{subject: subject}, stubCandidateLister{err: errors.New("boom")}, nil)

	_, err := svc.AvailableFaculty(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestClassifications(t *testing.T) {
	assert.Equal(t, models.WorkloadLight, classifyWorkload(2))
	assert.Equal(t, models.WorkloadModerate, classifyWorkload(3))
	assert.Equal(t, models.WorkloadModerate, classifyWorkload(5))
	assert.Equal(t, models.WorkloadHeavy, classifyWorkload(6))

	assert.Equal(t, models.ExperienceUnknown, classifyExperience(nil))
	assert.Equal(t, models.ExperienceJunior, classifyExperience(intPtr(1)))
	assert.Equal(t, models.ExperienceMid, classifyExperience(intPtr(2)))
	assert.Equal(t, models.ExperienceSenior, classifyExperience(intPtr(8)))
}

func TestScoreCapsExperienceAndLoad(t *testing.T) {
	subject := models.Subject{Name: "Chemistry", Department: "Science"}
	veteran := scoreCandidate(subject, candidate(1, "Vera", "Science", intPtr(25), 14, nil))
	assert.Equal(t, 20, veteran.Score)
	assert.Equal(t, models.WorkloadHeavy, veteran.Workload)
}

func TestSpecializationMatchesShortSpecializationWords(t *testing.T) {
	subject := models.Subject{Name: "Computer Networks", Department: "CS"}
	scored := scoreCandidate(subject, candidate(1, "Nia", "Math", nil, 10, strPtr("Net security")))
	assert.Equal(t, []string{"networks"}, scored.MatchedKeywords)
	assert.Equal(t, 5, scored.Score)

	assert.Equal(t, []string{"networks"}, specializationMatches("Computer Networks Lab", "Network Security"))
	assert.Equal(t, []string{"website"}, specializationMatches("Website Design", "web"))
}

func TestSpecializationMatchesIgnoresShortSubjectWords(t *testing.T) {
	assert.Empty(t, specializationMatches("Art of AI", "AI art"))
	assert.Empty(t, specializationMatches("Physics", ""))
}
