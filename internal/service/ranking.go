package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fieldops/backend/internal/metrics"
	"github.com/fieldops/backend/internal/models"
)

// Weight vectors are deliberately independent between the two candidate
// kinds; fleets trade part of the workload weight for availability
// breadth and carry no experience term.
const (
	techSkillWeight    = 0.6
	techWorkloadWeight = 0.4

	fleetSkillWeight        = 0.5
	fleetWorkloadWeight     = 0.3
	fleetAvailabilityWeight = 0.2

	maxSkillLevel = 5.0
)

type SuggestionStore interface {
	GetServiceType(ctx context.Context, id uuid.UUID) (models.ServiceType, error)
	ListTechnicianCandidates(ctx context.Context, serviceTypeID uuid.UUID) ([]models.TechnicianCandidate, error)
	ListFleetCandidates(ctx context.Context, serviceTypeID uuid.UUID) ([]models.FleetCandidate, error)
}

type SuggestionService struct {
	Store   SuggestionStore
	Metrics metrics.Sink
	Logger  zerolog.Logger
}

// SuggestTechnicians ranks available technicians for a service type.
// deliveryDate is accepted for forward compatibility with availability
// calendars and does not currently filter candidates.
func (s *SuggestionService) SuggestTechnicians(ctx context.Context, serviceTypeID uuid.UUID, deliveryDate *time.Time) ([]models.Suggestion, error) {
	st, err := s.Store.GetServiceType(ctx, serviceTypeID)
	if err != nil {
		return nil, err
	}
	if !st.Active {
		return []models.Suggestion{}, nil
	}

	candidates, err := s.Store.ListTechnicianCandidates(ctx, serviceTypeID)
	if err != nil {
		return nil, err
	}

	suggestions := RankTechnicians(candidates)
	s.sink().SuggestionsServed(string(models.SuggestionKindTechnician), len(suggestions))
	return suggestions, nil
}

// SuggestFleets ranks active fleets for a service type.
func (s *SuggestionService) SuggestFleets(ctx context.Context, serviceTypeID uuid.UUID, deliveryDate *time.Time) ([]models.Suggestion, error) {
	st, err := s.Store.GetServiceType(ctx, serviceTypeID)
	if err != nil {
		return nil, err
	}
	if !st.Active {
		return []models.Suggestion{}, nil
	}

	candidates, err := s.Store.ListFleetCandidates(ctx, serviceTypeID)
	if err != nil {
		return nil, err
	}

	suggestions := RankFleets(candidates)
	s.sink().SuggestionsServed(string(models.SuggestionKindFleet), len(suggestions))
	return suggestions, nil
}

func (s *SuggestionService) sink() metrics.Sink {
	if s.Metrics == nil {
		return metrics.NewNoopSink()
	}
	return s.Metrics
}

// RankTechnicians scores candidates on skill (60%) and inverted workload
// (40%), both on a 0-100 scale, and returns suggestions in descending
// score order. Ties break by lower workload, then by candidate id, so
// repeated calls over an unchanged snapshot return identical ordering.
func RankTechnicians(candidates []models.TechnicianCandidate) []models.Suggestion {
	eligible := make([]models.TechnicianCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Available && c.SkillLevel > 0 {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return []models.Suggestion{}
	}

	maxWorkload := 0
	minWorkload := eligible[0].ActiveOrders
	maxSkill := 0
	for _, c := range eligible {
		if c.ActiveOrders > maxWorkload {
			maxWorkload = c.ActiveOrders
		}
		if c.ActiveOrders < minWorkload {
			minWorkload = c.ActiveOrders
		}
		if c.SkillLevel > maxSkill {
			maxSkill = c.SkillLevel
		}
	}

	out := make([]models.Suggestion, 0, len(eligible))
	for _, c := range eligible {
		skillScore := float64(c.SkillLevel) / maxSkillLevel * 100
		score := techSkillWeight*skillScore + techWorkloadWeight*workloadScore(c.ActiveOrders, maxWorkload)

		out = append(out, models.Suggestion{
			CandidateID:     c.ID,
			CandidateName:   c.Name,
			Kind:            models.SuggestionKindTechnician,
			Score:           round2(score),
			Reason:          technicianReason(c, minWorkload, maxSkill),
			Workload:        c.ActiveOrders,
			SkillLevel:      float64(c.SkillLevel),
			YearsExperience: c.YearsExperience,
		})
	}

	sortSuggestions(out)
	return out
}

// RankFleets scores fleets on average skill (50%), inverted total
// workload (30%) and availability breadth (20%). Fleets with no
// available technicians are excluded. Same tie-break policy as
// technicians.
func RankFleets(candidates []models.FleetCandidate) []models.Suggestion {
	eligible := make([]models.FleetCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.AvailableTechnicians > 0 && c.AvgSkillLevel > 0 {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return []models.Suggestion{}
	}

	maxWorkload := 0
	minWorkload := eligible[0].ActiveOrders
	maxAvailable := 0
	maxSkill := 0.0
	for _, c := range eligible {
		if c.ActiveOrders > maxWorkload {
			maxWorkload = c.ActiveOrders
		}
		if c.ActiveOrders < minWorkload {
			minWorkload = c.ActiveOrders
		}
		if c.AvailableTechnicians > maxAvailable {
			maxAvailable = c.AvailableTechnicians
		}
		if c.AvgSkillLevel > maxSkill {
			maxSkill = c.AvgSkillLevel
		}
	}

	out := make([]models.Suggestion, 0, len(eligible))
	for _, c := range eligible {
		skillScore := c.AvgSkillLevel / maxSkillLevel * 100
		availScore := float64(c.AvailableTechnicians) / float64(maxAvailable) * 100
		score := fleetSkillWeight*skillScore +
			fleetWorkloadWeight*workloadScore(c.ActiveOrders, maxWorkload) +
			fleetAvailabilityWeight*availScore

		out = append(out, models.Suggestion{
			CandidateID:   c.ID,
			CandidateName: c.Name,
			Kind:          models.SuggestionKindFleet,
			Score:         round2(score),
			Reason:        fleetReason(c, minWorkload, maxSkill, maxAvailable),
			Workload:      c.ActiveOrders,
			SkillLevel:    round2(c.AvgSkillLevel),
		})
	}

	sortSuggestions(out)
	return out
}

// workloadScore inverts workload onto 0-100: the least loaded candidate
// scores 100. A cohort with zero orders everywhere scores 100 for all.
func workloadScore(active, max int) float64 {
	if max == 0 {
		return 100
	}
	return (1 - float64(active)/float64(max)) * 100
}

func sortSuggestions(s []models.Suggestion) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		if s[i].Workload != s[j].Workload {
			return s[i].Workload < s[j].Workload
		}
		return s[i].CandidateID.String() < s[j].CandidateID.String()
	})
}

func technicianReason(c models.TechnicianCandidate, minWorkload, maxSkill int) string {
	var base string
	switch {
	case c.ActiveOrders == minWorkload && c.SkillLevel >= 4:
		base = "lowest current workload with strong skill match"
	case c.SkillLevel == maxSkill:
		base = "highest skill level available"
	case c.ActiveOrders == minWorkload:
		base = "lowest current workload"
	default:
		base = "balanced skill and workload"
	}
	return fmt.Sprintf("%s; %d years of experience", base, c.YearsExperience)
}

func fleetReason(c models.FleetCandidate, minWorkload int, maxSkill float64, maxAvailable int) string {
	switch {
	case c.ActiveOrders == minWorkload && c.AvgSkillLevel >= 4:
		return "lowest fleet workload with strong average skill"
	case c.AvgSkillLevel == maxSkill:
		return fmt.Sprintf("highest average skill level with %d technicians available", c.AvailableTechnicians)
	case c.AvailableTechnicians == maxAvailable:
		return fmt.Sprintf("most technicians available (%d of %d)", c.AvailableTechnicians, c.TotalTechnicians)
	default:
		return "balanced skill, workload and availability"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
