package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/backend/internal/models"
)

func techCandidate(id string, skill, workload, years int) models.TechnicianCandidate {
	return models.TechnicianCandidate{
		ID:              uuid.MustParse(id),
		Name:            "tech-" + id[:8],
		Available:       true,
		YearsExperience: years,
		SkillLevel:      skill,
		ActiveOrders:    workload,
	}
}

const (
	idA = "11111111-1111-1111-1111-111111111111"
	idB = "22222222-2222-2222-2222-222222222222"
	idC = "33333333-3333-3333-3333-333333333333"
)

func TestRankTechnicians_Deterministic(t *testing.T) {
	candidates := []models.TechnicianCandidate{
		techCandidate(idA, 3, 2, 4),
		techCandidate(idB, 5, 4, 10),
		techCandidate(idC, 4, 0, 6),
	}

	first := RankTechnicians(candidates)
	second := RankTechnicians(candidates)
	if len(first) != len(second) {
		t.Fatalf("expected equal lengths, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].CandidateID != second[i].CandidateID || first[i].Score != second[i].Score {
			t.Fatalf("run %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRankTechnicians_DescendingByScore(t *testing.T) {
	candidates := []models.TechnicianCandidate{
		techCandidate(idA, 2, 5, 1),
		techCandidate(idB, 5, 0, 8),
		techCandidate(idC, 3, 3, 3),
	}

	out := RankTechnicians(candidates)
	if len(out) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Fatalf("not descending at %d: %f > %f", i, out[i].Score, out[i-1].Score)
		}
	}
	if out[0].CandidateID.String() != idB {
		t.Fatalf("expected best skill/workload candidate first, got %s", out[0].CandidateID)
	}
}

func TestRankTechnicians_Weights(t *testing.T) {
	// Both terms normalized to 0-100: skill 5 of 5 -> 100, zero workload
	// against a max of 4 -> 100.
	candidates := []models.TechnicianCandidate{
		techCandidate(idA, 5, 0, 8),
		techCandidate(idB, 5, 4, 8),
	}
	out := RankTechnicians(candidates)
	if out[0].Score != 100 {
		t.Fatalf("expected top score 100, got %f", out[0].Score)
	}
	// Same skill, full workload: only the 60% skill term remains.
	if out[1].Score != 60 {
		t.Fatalf("expected score 60, got %f", out[1].Score)
	}
}

func TestRankTechnicians_TieBreakByID(t *testing.T) {
	candidates := []models.TechnicianCandidate{
		techCandidate(idB, 4, 1, 5),
		techCandidate(idA, 4, 1, 5),
	}
	for i := 0; i < 5; i++ {
		out := RankTechnicians(candidates)
		if out[0].CandidateID.String() != idA || out[1].CandidateID.String() != idB {
			t.Fatalf("expected stable id tie-break, got %s before %s", out[0].CandidateID, out[1].CandidateID)
		}
	}
}

func TestRankTechnicians_ExcludesUnavailable(t *testing.T) {
	unavailable := techCandidate(idA, 5, 0, 10)
	unavailable.Available = false
	out := RankTechnicians([]models.TechnicianCandidate{unavailable})
	if len(out) != 0 {
		t.Fatalf("expected unavailable technician excluded, got %d", len(out))
	}
}

func TestRankTechnicians_EmptyInput(t *testing.T) {
	out := RankTechnicians(nil)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", out)
	}
}

func TestRankTechnicians_ReasonMentionsExperience(t *testing.T) {
	out := RankTechnicians([]models.TechnicianCandidate{techCandidate(idA, 5, 0, 12)})
	if !strings.Contains(out[0].Reason, "12 years of experience") {
		t.Fatalf("expected experience in reason, got %q", out[0].Reason)
	}
	if !strings.Contains(out[0].Reason, "lowest current workload with strong skill match") {
		t.Fatalf("unexpected reason %q", out[0].Reason)
	}
}

func TestRankFleets_ExcludesNoAvailability(t *testing.T) {
	candidates := []models.FleetCandidate{
		{ID: uuid.MustParse(idA), Name: "north", AvgSkillLevel: 4.5, AvailableTechnicians: 0, TotalTechnicians: 3, ActiveOrders: 1},
		{ID: uuid.MustParse(idB), Name: "south", AvgSkillLevel: 3.5, AvailableTechnicians: 2, TotalTechnicians: 4, ActiveOrders: 2},
	}
	out := RankFleets(candidates)
	if len(out) != 1 || out[0].CandidateID.String() != idB {
		t.Fatalf("expected only the fleet with available technicians, got %+v", out)
	}
}

func TestRankFleets_SkillDominant(t *testing.T) {
	candidates := []models.FleetCandidate{
		{ID: uuid.MustParse(idA), Name: "a", AvgSkillLevel: 5, AvailableTechnicians: 2, TotalTechnicians: 2, ActiveOrders: 3},
		{ID: uuid.MustParse(idB), Name: "b", AvgSkillLevel: 2, AvailableTechnicians: 3, TotalTechnicians: 3, ActiveOrders: 3},
	}
	out := RankFleets(candidates)
	if out[0].CandidateID.String() != idA {
		t.Fatalf("expected higher-skill fleet first, got %s", out[0].CandidateID)
	}
}

type fakeSuggestionStore struct {
	serviceType models.ServiceType
	typeErr     error
	technicians []models.TechnicianCandidate
	fleets      []models.FleetCandidate
}

func (f *fakeSuggestionStore) GetServiceType(ctx context.Context, id uuid.UUID) (models.ServiceType, error) {
	if f.typeErr != nil {
		return models.ServiceType{}, f.typeErr
	}
	return f.serviceType, nil
}

func (f *fakeSuggestionStore) ListTechnicianCandidates(ctx context.Context, serviceTypeID uuid.UUID) ([]models.TechnicianCandidate, error) {
	return f.technicians, nil
}

func (f *fakeSuggestionStore) ListFleetCandidates(ctx context.Context, serviceTypeID uuid.UUID) ([]models.FleetCandidate, error) {
	return f.fleets, nil
}

func TestSuggestTechnicians_MissingServiceType(t *testing.T) {
	svc := &SuggestionService{Store: &fakeSuggestionStore{typeErr: ErrServiceTypeNotFound}}
	_, err := svc.SuggestTechnicians(context.Background(), uuid.New(), nil)
	if err != ErrServiceTypeNotFound {
		t.Fatalf("expected ErrServiceTypeNotFound, got %v", err)
	}
}

func TestSuggestTechnicians_InactiveServiceTypeEmptyList(t *testing.T) {
	store := &fakeSuggestionStore{
		serviceType: models.ServiceType{ID: uuid.New(), Name: "AC repair", Active: false},
		technicians: []models.TechnicianCandidate{techCandidate(idA, 5, 0, 3)},
	}
	svc := &SuggestionService{Store: store}
	out, err := svc.SuggestTechnicians(context.Background(), store.serviceType.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty list for inactive service type, got %d", len(out))
	}
}

func TestSuggestTechnicians_DeliveryDateAccepted(t *testing.T) {
	store := &fakeSuggestionStore{
		serviceType: models.ServiceType{ID: uuid.New(), Name: "AC repair", Active: true},
		technicians: []models.TechnicianCandidate{techCandidate(idA, 5, 0, 3)},
	}
	svc := &SuggestionService{Store: store}
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out, err := svc.SuggestTechnicians(context.Background(), store.serviceType.ID, &date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(out))
	}
}
