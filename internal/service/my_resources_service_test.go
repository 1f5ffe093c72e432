package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMyResources(b *fakeBackend, author AuthorResolver) *MyResourcesService {
	return NewMyResourcesService(b, author, MutationOptions{Executor: syncExecutor{}}, zerolog.Nop())
}

func TestMyResourcesKeepsOwnRecords(t *testing.T) {
	s := newMyResources(exploreBackend(), StaticAuthor("asha"))
	require.NoError(t, s.Load(context.Background()))

	res := s.Resources()
	require.Len(t, res, 2)
	for _, r := range res {
		assert.Equal(t, "Asha", r.Author)
	}
}

func TestMyResourcesUnknownAuthor(t *testing.T) {
	s := newMyResources(exploreBackend(), StaticAuthor(""))
	assert.ErrorIs(t, s.Load(context.Background()), ErrNoAuthor)
}

func TestMyResourcesProfileAuthor(t *testing.T) {
	b := exploreBackend()
	s := newMyResources(b, ProfileAuthor("", b))
	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.Resources(), 2)
}

func TestMyResourcesUpdate(t *testing.T) {
	b := exploreBackend()
	s := newMyResources(b, StaticAuthor("Asha"))
	require.NoError(t, s.Load(context.Background()))

	title := "Graph Theory Notes"
	m, err := s.Update(context.Background(), "1", ResourceUpdate{Title: &title})
	require.NoError(t, err)
	require.NoError(t, m.Wait(context.Background()))

	assert.Equal(t, "Graph Theory Notes", s.Resources()[0].Title)
	assert.Equal(t, "Graph Theory Notes", b.resources[0].Title)
}

func TestMyResourcesUpdateRollback(t *testing.T) {
	b := exploreBackend()
	s := newMyResources(b, StaticAuthor("Asha"))
	require.NoError(t, s.Load(context.Background()))

	b.failNext = errors.New("503")
	title := "Renamed"
	m, err := s.Update(context.Background(), "1", ResourceUpdate{Title: &title})
	require.NoError(t, err)
	require.Error(t, m.Wait(context.Background()))

	assert.Equal(t, "Graph Notes", s.Resources()[0].Title)
}

func TestMyResourcesUpdateValidation(t *testing.T) {
	s := newMyResources(exploreBackend(), StaticAuthor("Asha"))
	require.NoError(t, s.Load(context.Background()))

	empty := " "
	_, err := s.Update(context.Background(), "1", ResourceUpdate{Title: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Update(context.Background(), "missing", ResourceUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMyResourcesDelete(t *testing.T) {
	b := exploreBackend()
	s := newMyResources(b, StaticAuthor("Asha"))
	require.NoError(t, s.Load(context.Background()))

	b.failNext = errors.New("forbidden")
	m, err := s.Delete(context.Background(), "3")
	require.NoError(t, err)
	require.Error(t, m.Wait(context.Background()))
	assert.Equal(t, []string{"1", "3"}, resourceIDs(s.Resources()))

	m, err = s.Delete(context.Background(), "3")
	require.NoError(t, err)
	require.NoError(t, m.Wait(context.Background()))
	assert.Equal(t, []string{"1"}, resourceIDs(s.Resources()))

	_, err = s.Delete(context.Background(), "3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func resourceIDs(res []models.Resource) []string {
	out := make([]string, 0, len(res))
	for _, r := range res {
		out = append(out, r.ID)
	}
	return out
}
