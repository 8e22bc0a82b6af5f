package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const (
	departmentBonus     = 10
	experienceCap       = 10
	loadCeiling         = 10
	specializationBonus = 5
	minKeywordLength    = 4
	maxRecommendations  = 3
)

type subjectFinder interface {
	FindActiveByID(ctx context.Context, id int64) (*models.Subject, error)
}

type facultyCandidateLister interface {
	ListCandidates(ctx context.Context, subjectID int64) ([]models.FacultyCandidate, error)
}

// AvailabilityService ranks faculty eligible for a subject assignment.
type AvailabilityService struct {
	subjects subjectFinder
	faculty  facultyCandidateLister
	logger   *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(subjects subjectFinder, faculty facultyCandidateLister, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{subjects: subjects, faculty: faculty, logger: logger}
}

// AvailableFaculty returns active faculty not yet assigned to the subject, best match first.
func (s *AvailabilityService) AvailableFaculty(ctx context.Context, subjectID int64) (*models.AvailabilityReport, error) {
	if subjectID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject id must be positive")
	}

	var (
		subject    *models.Subject
		candidates []models.FacultyCandidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subject, err = s.subjects.FindActiveByID(gctx, subjectID)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = s.faculty.ListCandidates(gctx, subjectID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrSubjectNotFound, "subject not found or inactive")
		}
		s.logger.Error("failed to resolve available faculty", zap.Int64("subject_id", subjectID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to resolve available faculty")
	}

	ranked := rankCandidates(*subject, candidates)
	return &models.AvailabilityReport{
		Subject:         *subject,
		Faculty:         ranked,
		Stats:           availabilityStats(ranked),
		Recommendations: recommend(ranked),
	}, nil
}

// rankCandidates scores every candidate and sorts by score, then same department, then lower load,
// then name and id.
func rankCandidates(subject models.Subject, candidates []models.FacultyCandidate) []models.FacultyAvailability {
	ranked := make([]models.FacultyAvailability, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scoreCandidate(subject, c))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SameDepartment != b.SameDepartment {
			return a.SameDepartment
		}
		if a.ActiveAssignments != b.ActiveAssignments {
			return a.ActiveAssignments < b.ActiveAssignments
		}
		if na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name); na != nb {
			return na < nb
		}
		return a.FacultyID < b.FacultyID
	})
	return ranked
}

func scoreCandidate(subject models.Subject, c models.FacultyCandidate) models.FacultyAvailability {
	sameDepartment := subject.Department != "" && strings.EqualFold(strings.TrimSpace(c.Department), strings.TrimSpace(subject.Department))

	score := 0
	if sameDepartment {
		score += departmentBonus
	}
	if c.ExperienceYears != nil && *c.ExperienceYears > 0 {
		score += minInt(*c.ExperienceYears, experienceCap)
	}
	score += maxInt(0, loadCeiling-c.ActiveAssignments)

	var specialization string
	if c.Specialization != nil {
		specialization = *c.Specialization
	}
	matched := specializationMatches(subject.Name, specialization)
	score += specializationBonus * len(matched)

	return models.FacultyAvailability{
		FacultyID:         c.ID,
		EmployeeID:        c.EmployeeID,
		Name:              c.Name,
		Department:        c.Department,
		Designation:       c.Designation,
		Specialization:    c.Specialization,
		ExperienceYears:   c.ExperienceYears,
		ActiveAssignments: c.ActiveAssignments,
		SameDepartment:    sameDepartment,
		Score:             score,
		MatchedKeywords:   matched,
		Workload:          classifyWorkload(c.ActiveAssignments),
		ExperienceLevel:   classifyExperience(c.ExperienceYears),
	}
}

// specializationMatches returns each distinct subject word longer than three characters that is a
// substring of, or contains, a specialization word of any length. Each subject word counts at most once.
func specializationMatches(subjectName, specialization string) []string {
	specWords := keywords(specialization, 1)
	if len(specWords) == 0 {
		return nil
	}
	var matched []string
	for _, word := range keywords(subjectName, minKeywordLength) {
		for _, spec := range specWords {
			if strings.Contains(spec, word) || strings.Contains(word, spec) {
				matched = append(matched, word)
				break
			}
		}
	}
	return matched
}

// keywords lowercases and splits text into distinct words of at least minLen characters.
func keywords(text string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minLen {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func classifyWorkload(active int) string {
	switch {
	case active < 3:
		return models.WorkloadLight
	case active < 6:
		return models.WorkloadModerate
	default:
		return models.WorkloadHeavy
	}
}

func classifyExperience(years *int) string {
	switch {
	case years == nil:
		return models.ExperienceUnknown
	case *years < 2:
		return models.ExperienceJunior
	case *years < 8:
		return models.ExperienceMid
	default:
		return models.ExperienceSenior
	}
}

func availabilityStats(ranked []models.FacultyAvailability) models.AvailabilityStats {
	stats := models.AvailabilityStats{TotalEligible: len(ranked)}
	if len(ranked) == 0 {
		return stats
	}
	load := 0
	for _, f := range ranked {
		if f.SameDepartment {
			stats.SameDepartment++
		}
		load += f.ActiveAssignments
	}
	stats.AverageLoad = math.Round(float64(load)/float64(len(ranked))*100) / 100
	return stats
}

func recommend(ranked []models.FacultyAvailability) []models.Recommendation {
	limit := minInt(len(ranked), maxRecommendations)
	out := make([]models.Recommendation, 0, limit)
	for _, f := range ranked[:limit] {
		var reasons []string
		if f.SameDepartment {
			reasons = append(reasons, fmt.Sprintf("Same department (%s)", f.Department))
		}
		if f.ExperienceYears != nil && *f.ExperienceYears >= 5 {
			reasons = append(reasons, fmt.Sprintf("%d years of experience", *f.ExperienceYears))
		}
		if f.ActiveAssignments < 3 {
			reasons = append(reasons, fmt.Sprintf("Light workload (%d active assignments)", f.ActiveAssignments))
		}
		switch {
		case len(f.MatchedKeywords) > 0:
			reasons = append(reasons, fmt.Sprintf("Specialization matches subject (%s)", strings.Join(f.MatchedKeywords, ", ")))
		case f.Specialization != nil && strings.TrimSpace(*f.Specialization) != "":
			reasons = append(reasons, fmt.Sprintf("Has specialization: %s", strings.TrimSpace(*f.Specialization)))
		}
		if reasons == nil {
			reasons = []string{}
		}
		out = append(out, models.Recommendation{FacultyID: f.FacultyID, Name: f.Name, Score: f.Score, Reasons: reasons})
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
