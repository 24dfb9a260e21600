package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go-character-api/internal/event"
	"go-character-api/internal/model"
	"go-character-api/internal/validate"
	"go-character-api/pkg/apierror"
)

type characterRepository interface {
	List(ctx context.Context) ([]model.Character, error)
	FindByID(ctx context.Context, id int64) (model.Character, error)
	Create(ctx context.Context, c model.Character) (model.Character, error)
	Update(ctx context.Context, c model.Character) (model.Character, error)
	Delete(ctx context.Context, id int64) error
}

type CharacterService struct {
	repo characterRepository
	bus  event.Bus
}

func NewCharacterService(repo characterRepository, bus event.Bus) *CharacterService {
	return &CharacterService{repo: repo, bus: bus}
}

func (s *CharacterService) List(ctx context.Context) ([]model.Character, error) {
	return s.repo.List(ctx)
}

func (s *CharacterService) Get(ctx context.Context, id int64) (model.Character, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CharacterService) Create(ctx context.Context, actor *model.AuthClaims, req model.CharacterRequest) (model.Character, error) {
	req = normalizeCharacter(req)
	if err := validateCharacter(req); err != nil {
		return model.Character{}, err
	}

	created, err := s.repo.Create(ctx, model.Character{Name: req.Name, Lastname: req.Lastname})
	if err != nil {
		return model.Character{}, err
	}

	s.publish(event.TypeCharacterCreated, actor, created.ID, created)
	return created, nil
}

// Update replaces every field but id with req.
func (s *CharacterService) Update(ctx context.Context, actor *model.AuthClaims, id int64, req model.CharacterRequest) (model.Character, error) {
	req = normalizeCharacter(req)
	if err := validateCharacter(req); err != nil {
		return model.Character{}, err
	}

	before, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Character{}, err
	}

	updated, err := s.repo.Update(ctx, model.Character{ID: id, Name: req.Name, Lastname: req.Lastname})
	if err != nil {
		return model.Character{}, err
	}

	s.publish(event.TypeCharacterUpdated, actor, id, map[string]model.Character{"before": before, "after": updated})
	return updated, nil
}

func (s *CharacterService) Delete(ctx context.Context, actor *model.AuthClaims, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(event.TypeCharacterDeleted, actor, id, nil)
	return nil
}

func (s *CharacterService) publish(t event.Type, actor *model.AuthClaims, id int64, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.New(t, actorFromClaims(actor), fmt.Sprintf("characters/%d", id), payload))
}

func normalizeCharacter(req model.CharacterRequest) model.CharacterRequest {
	return model.CharacterRequest{
		Name:     strings.TrimSpace(req.Name),
		Lastname: strings.TrimSpace(req.Lastname),
	}
}

func validateCharacter(req model.CharacterRequest) error {
	if issues := validate.Character(req); len(issues) > 0 {
		return apierror.New("BAD_REQUEST", "Bad Request", "", http.StatusBadRequest).WithIssues(issues)
	}
	return nil
}
